// Package scienceassembly describes the Science Assembly (理系集会) event a
// session log was recorded at.
//
// Metadata is stored in the "metadata" member of a saved session log.
// DecodeMetadata restores it when loading:
//
//	l, err := yaiba.Load(r, yaiba.WithMetadataDecoder(scienceassembly.DecodeMetadata))
package scienceassembly

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Event instances.
const (
	InstanceMain  = "main"
	InstanceSub   = "sub"
	InstancePetit = "petit"
)

// ErrIncompleteMetadata is returned when a metadata member lacks a field.
var ErrIncompleteMetadata = errors.New("incomplete event metadata")

// Metadata identifies one event.
type Metadata struct {
	EventType        string `json:"event_type"`        // e.g. "理系集会"
	EventDate        string `json:"event_date"`        // e.g. "2022-04-29"
	EventDescription string `json:"event_description"` // title of the talk
	EventInstance    string `json:"event_instance"`    // main, sub or petit
}

// IsZero reports whether no field is set.
func (m Metadata) IsZero() bool {
	return m == Metadata{}
}

func (m Metadata) String() string {
	return fmt.Sprintf("%s %s (%s): %s", m.EventType, m.EventDate, m.EventInstance, m.EventDescription)
}

// wireMetadata tells absent members from empty strings.
type wireMetadata struct {
	EventType        *string `json:"event_type"`
	EventDate        *string `json:"event_date"`
	EventDescription *string `json:"event_description"`
	EventInstance    *string `json:"event_instance"`
}

// DecodeMetadata decodes a metadata member into a *Metadata.
// Every field must be present and no other member is allowed.
// It has the signature of sessionlog.MetadataDecoder.
func DecodeMetadata(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var w wireMetadata
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("decode event metadata: %w", err)
	}

	var missing []string
	field := func(name string, v *string) string {
		if v == nil {
			missing = append(missing, name)
			return ""
		}
		return *v
	}
	m := &Metadata{
		EventType:        field("event_type", w.EventType),
		EventDate:        field("event_date", w.EventDate),
		EventDescription: field("event_description", w.EventDescription),
		EventInstance:    field("event_instance", w.EventInstance),
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteMetadata, strings.Join(missing, ", "))
	}
	return m, nil
}
