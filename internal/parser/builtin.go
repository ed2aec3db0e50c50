package parser

import (
	"regexp"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

var (
	enteringRoomRegex = regexp.MustCompile(logPrefix + `\[Behaviour\] Entering Room: (.+)$`)
	playerJoinRegex   = regexp.MustCompile(logPrefix + `\[Behaviour\] OnPlayerJoined (.+)$`)
	playerLeftRegex   = regexp.MustCompile(logPrefix + `\[Behaviour\] OnPlayerLeft (.+)$`)
)

// bodyGroup is the index of the first group after logPrefix.
const bodyGroup = 8

// Builtin parses the entries VRChat itself writes: entering a room and
// players joining or leaving.
type Builtin struct {
	pseudonymizer Pseudonymizer
}

// NewBuiltin returns a Builtin parser pseudonymizing names with p.
func NewBuiltin(p Pseudonymizer) *Builtin {
	return &Builtin{pseudonymizer: p}
}

// Parse implements EntryParser.
func (b *Builtin) Parse(raw entry.Raw) (entry.Entry, error) {
	s := string(raw)

	if m := enteringRoomRegex.FindStringSubmatch(s); m != nil {
		ts, err := timestampFromMatch(m)
		if err != nil {
			return nil, err
		}
		return &entry.EnteringRoom{Timestamp: ts, RoomName: m[bodyGroup]}, nil
	}

	if m := playerJoinRegex.FindStringSubmatch(s); m != nil {
		ts, err := timestampFromMatch(m)
		if err != nil {
			return nil, err
		}
		name := entry.UserName(m[bodyGroup])
		return &entry.PlayerJoin{
			Timestamp:      ts,
			UserName:       name,
			PseudoUserName: b.pseudonymizer.Pseudonymize(name),
		}, nil
	}

	if m := playerLeftRegex.FindStringSubmatch(s); m != nil {
		ts, err := timestampFromMatch(m)
		if err != nil {
			return nil, err
		}
		name := entry.UserName(m[bodyGroup])
		return &entry.PlayerLeft{
			Timestamp:      ts,
			UserName:       name,
			PseudoUserName: b.pseudonymizer.Pseudonymize(name),
		}, nil
	}

	return nil, nil
}
