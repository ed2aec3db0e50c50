package sessionlog

import "github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"

// Policy decides per privacy class whether fields are serialized.
// Fields of entry.ClassNone are always serialized.
type Policy struct {
	UserName       bool
	PseudoUserName bool
	PlayerID       bool
	Timestamp      bool
}

// ExportAll emits every field.
func ExportAll() Policy {
	return Policy{UserName: true, PseudoUserName: true, PlayerID: true, Timestamp: true}
}

// Pseudonymized emits everything except raw user names. It is the default
// for both codecs.
func Pseudonymized() Policy {
	return Policy{PseudoUserName: true, PlayerID: true, Timestamp: true}
}

// Strict suppresses every classified field.
func Strict() Policy {
	return Policy{}
}

// Allows reports whether fields of class c are serialized.
func (p Policy) Allows(c entry.FieldClass) bool {
	switch c {
	case entry.ClassUserName:
		return p.UserName
	case entry.ClassPseudoUserName:
		return p.PseudoUserName
	case entry.ClassPlayerID:
		return p.PlayerID
	case entry.ClassTimestamp:
		return p.Timestamp
	default:
		return true
	}
}
