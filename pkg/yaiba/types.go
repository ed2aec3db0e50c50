package yaiba

import (
	"io"

	"github.com/scienceassembly/yaiba-go/internal/segment"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/sessionlog"
)

// Re-export the entry and session log types for convenience.
// Users can import just "github.com/scienceassembly/yaiba-go/pkg/yaiba".

type (
	Entry          = entry.Entry
	TypeID         = entry.TypeID
	Raw            = entry.Raw
	Timestamp      = entry.Timestamp
	UserName       = entry.UserName
	PseudoUserName = entry.PseudoUserName
	PlayerID       = entry.PlayerID

	EnteringRoom          = entry.EnteringRoom
	PlayerJoin            = entry.PlayerJoin
	PlayerLeft            = entry.PlayerLeft
	PlayerPosition        = entry.PlayerPosition
	PlayerPositionVersion = entry.PlayerPositionVersion
	QuestionnaireAnswer   = entry.QuestionnaireAnswer
	TagMarker             = entry.TagMarker

	SessionLog      = sessionlog.SessionLog
	Policy          = sessionlog.Policy
	DecodeError     = sessionlog.DecodeError
	MetadataDecoder = sessionlog.MetadataDecoder
)

// Type id constants.
const (
	TypeEnteringRoom          = entry.TypeEnteringRoom
	TypePlayerJoin            = entry.TypePlayerJoin
	TypePlayerLeft            = entry.TypePlayerLeft
	TypePlayerPosition        = entry.TypePlayerPosition
	TypePlayerPositionVersion = entry.TypePlayerPositionVersion
	TypeQuestionnaireAnswer   = entry.TypeQuestionnaireAnswer
	TypeTagMarker             = entry.TypeTagMarker
)

// EntryParser parses one raw log entry.
//
// Return values:
//   - (Entry, nil): the raw entry was recognized
//   - (nil, nil): the raw entry is not in this parser's format (not an error)
//   - (nil, error): the raw entry is in this parser's format but malformed
type EntryParser interface {
	Parse(raw Raw) (Entry, error)
}

// Pseudonymizer maps user names to pseudonyms.
type Pseudonymizer interface {
	Pseudonymize(name UserName) PseudoUserName
}

// LineReader yields one line per call without its terminator. io.EOF
// reports an empty read; reading ends after a bounded number of
// consecutive empty reads.
type LineReader interface {
	ReadLine() (string, error)
}

// NewLineReader returns a LineReader over r.
func NewLineReader(r io.Reader) LineReader {
	return segment.NewReader(r)
}
