// Package entry defines the structured log entries produced by the yaiba
// parsers, together with the value types they carry.
//
// The set of entry variants is closed: every Entry is one of EnteringRoom,
// PlayerJoin, PlayerLeft, PlayerPositionVersion, PlayerPosition,
// QuestionnaireAnswer or TagMarker. Each variant declares its fields with a
// privacy class so that encoders can gate them without reflection.
package entry

import (
	"errors"
	"sort"
	"strings"
)

// TypeID is the stable identifier of an entry variant across
// serialization boundaries. Renaming one breaks decode compatibility.
type TypeID string

const (
	// TypeEnteringRoom is the local user entering a room (world instance).
	TypeEnteringRoom TypeID = "vrc/entering_room"

	// TypePlayerJoin is a player joining the instance.
	TypePlayerJoin TypeID = "vrc/player_join"

	// TypePlayerLeft is a player leaving the instance.
	TypePlayerLeft TypeID = "vrc/player_left"

	// TypePlayerPosition is one sampled player position.
	TypePlayerPosition TypeID = "yaiba/player_position"

	// TypePlayerPositionVersion announces the player position schema.
	TypePlayerPositionVersion TypeID = "yaiba/player_position/version"

	// TypeQuestionnaireAnswer is a set of questionnaire answers.
	TypeQuestionnaireAnswer TypeID = "yaiba/questionnaire_answer"

	// TypeTagMarker is a dump of the tag markers attached to players.
	TypeTagMarker TypeID = "yodokoro/tag_marker"
)

// ErrUnknownTypeID is returned when a type id has no registered variant.
var ErrUnknownTypeID = errors.New("unknown entry type id")

// allTypeIDs is the canonical list of all variants.
var allTypeIDs = []TypeID{
	TypeEnteringRoom,
	TypePlayerJoin,
	TypePlayerLeft,
	TypePlayerPosition,
	TypePlayerPositionVersion,
	TypeQuestionnaireAnswer,
	TypeTagMarker,
}

// TypeIDs returns a sorted list of all valid type id names.
func TypeIDs() []string {
	names := make([]string, len(allTypeIDs))
	for i, t := range allTypeIDs {
		names[i] = string(t)
	}
	sort.Strings(names)
	return names
}

var typeByName = func() map[string]TypeID {
	m := make(map[string]TypeID, len(allTypeIDs))
	for _, t := range allTypeIDs {
		m[string(t)] = t
	}
	return m
}()

// ParseTypeID converts a string to a TypeID if valid.
// It is case-insensitive and trims leading/trailing whitespace.
func ParseTypeID(name string) (TypeID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	t, ok := typeByName[name]
	return t, ok
}

// FieldClass is the privacy class of an entry field. Encoders decide per
// class whether a field is emitted.
type FieldClass int

const (
	// ClassNone fields are always emitted.
	ClassNone FieldClass = iota
	// ClassUserName marks raw, identifying user names.
	ClassUserName
	// ClassPseudoUserName marks pseudonymized user names.
	ClassPseudoUserName
	// ClassPlayerID marks world-internal player ids.
	ClassPlayerID
	// ClassTimestamp marks timestamps.
	ClassTimestamp
)

func (c FieldClass) String() string {
	switch c {
	case ClassUserName:
		return "user_name"
	case ClassPseudoUserName:
		return "pseudo_user_name"
	case ClassPlayerID:
		return "player_id"
	case ClassTimestamp:
		return "timestamp"
	default:
		return "none"
	}
}

// FieldSpec describes one declared field of a variant.
type FieldSpec struct {
	Name  string
	Class FieldClass

	// Extended fields were added after the tabular column layout was
	// fixed; tabular exports only include them on request.
	Extended bool
}

// Field is a FieldSpec paired with the value held by a concrete entry.
type Field struct {
	FieldSpec
	Value any
}

// Entry is one structured record derived from a single raw log chunk.
// Entries are immutable once constructed.
type Entry interface {
	// TypeID returns the stable identifier of the variant.
	TypeID() TypeID

	// At returns when the entry was logged.
	At() Timestamp

	// Fields returns the declared fields in declaration order.
	Fields() []Field

	sealed()
}

// Schema returns the declared fields of the variant identified by id.
func Schema(id TypeID) ([]FieldSpec, error) {
	v, ok := registry[id]
	if !ok {
		return nil, ErrUnknownTypeID
	}
	out := make([]FieldSpec, len(v.schema))
	copy(out, v.schema)
	return out, nil
}

func withValues(schema []FieldSpec, values ...any) []Field {
	fields := make([]Field, len(schema))
	for i, spec := range schema {
		fields[i] = Field{FieldSpec: spec, Value: values[i]}
	}
	return fields
}
