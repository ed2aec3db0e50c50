package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawFields holds the undecoded members of one serialized entry object.
type RawFields map[string]json.RawMessage

type variant struct {
	schema []FieldSpec
	decode func(RawFields) (Entry, error)
}

// registry covers the full closed variant set.
var registry = map[TypeID]variant{
	TypeEnteringRoom:          {enteringRoomSchema, decodeEnteringRoom},
	TypePlayerJoin:            {playerPresenceSchema, decodePlayerJoin},
	TypePlayerLeft:            {playerPresenceSchema, decodePlayerLeft},
	TypePlayerPosition:        {playerPositionSchema, decodePlayerPosition},
	TypePlayerPositionVersion: {playerPositionVersionSchema, decodePlayerPositionVersion},
	TypeQuestionnaireAnswer:   {questionnaireAnswerSchema, decodeQuestionnaireAnswer},
	TypeTagMarker:             {tagMarkerSchema, decodeTagMarker},
}

// Decode builds the entry identified by id from its serialized members.
// Absent or null members leave the corresponding field at its zero value.
func Decode(id TypeID, fields RawFields) (Entry, error) {
	v, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeID, id)
	}
	return v.decode(fields)
}

// get unmarshals fields[key] into dst unless it is absent or null.
func (f RawFields) get(key string, dst any) error {
	raw, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

// getAll is get over key/destination pairs, stopping at the first error.
func (f RawFields) getAll(pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := f.get(pairs[i].(string), pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func decodeEnteringRoom(f RawFields) (Entry, error) {
	e := &EnteringRoom{}
	if err := f.getAll("timestamp", &e.Timestamp, "room_name", &e.RoomName); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePlayerJoin(f RawFields) (Entry, error) {
	e := &PlayerJoin{}
	if err := f.getAll(
		"timestamp", &e.Timestamp,
		"user_name", &e.UserName,
		"pseudo_user_name", &e.PseudoUserName,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePlayerLeft(f RawFields) (Entry, error) {
	e := &PlayerLeft{}
	if err := f.getAll(
		"timestamp", &e.Timestamp,
		"user_name", &e.UserName,
		"pseudo_user_name", &e.PseudoUserName,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePlayerPositionVersion(f RawFields) (Entry, error) {
	e := &PlayerPositionVersion{}
	if err := f.getAll(
		"timestamp", &e.Timestamp,
		"major", &e.Major,
		"minor", &e.Minor,
		"patch", &e.Patch,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func decodePlayerPosition(f RawFields) (Entry, error) {
	e := &PlayerPosition{}
	if err := f.getAll(
		"timestamp", &e.Timestamp,
		"player_id", &e.PlayerID,
		"user_name", &e.UserName,
		"pseudo_user_name", &e.PseudoUserName,
		"location_x", &e.LocationX,
		"location_y", &e.LocationY,
		"location_z", &e.LocationZ,
		"rotation_1", &e.Rotation1,
		"rotation_2", &e.Rotation2,
		"rotation_3", &e.Rotation3,
		"is_vr", &e.IsVR,
		"velocity_x", &e.VelocityX,
		"velocity_y", &e.VelocityY,
		"velocity_z", &e.VelocityZ,
	); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeQuestionnaireAnswer(f RawFields) (Entry, error) {
	e := &QuestionnaireAnswer{}
	if err := f.getAll("timestamp", &e.Timestamp, "answer_for_question", &e.AnswerForQuestion); err != nil {
		return nil, err
	}
	return e, nil
}

func decodeTagMarker(f RawFields) (Entry, error) {
	e := &TagMarker{}
	if err := f.getAll("timestamp", &e.Timestamp, "tag_names_for_player_id", &e.TagNamesForPlayerID); err != nil {
		return nil, err
	}
	return e, nil
}
