package sessionlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

const typeIDKey = "type_id"

// JSONEncoder serializes a SessionLog as
// {"log_entries":[...],"metadata":...}.
//
// Each entry becomes a flat object of its allowed fields in declaration
// order followed by "type_id". Timestamps are numeric POSIX seconds.
// Output bytes are deterministic for a given log and policy.
type JSONEncoder struct {
	Policy Policy
}

// NewJSONEncoder returns an encoder with the Pseudonymized policy.
func NewJSONEncoder() *JSONEncoder {
	return &JSONEncoder{Policy: Pseudonymized()}
}

// Encode returns the JSON document for l.
func (e *JSONEncoder) Encode(l *SessionLog) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"log_entries":[`)
	for i, ent := range l.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := e.encodeEntry(&buf, ent); err != nil {
			return nil, fmt.Errorf("log entry %d: %w", i, err)
		}
	}
	buf.WriteString(`],"metadata":`)
	meta, err := json.Marshal(l.Metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata: %w", err)
	}
	buf.Write(meta)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Write writes the JSON document for l to w.
func (e *JSONEncoder) Write(w io.Writer, l *SessionLog) error {
	data, err := e.Encode(l)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (e *JSONEncoder) encodeEntry(buf *bytes.Buffer, ent entry.Entry) error {
	buf.WriteByte('{')
	for _, f := range ent.Fields() {
		if !e.Policy.Allows(f.Class) {
			continue
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		writeKey(buf, f.Name)
		buf.Write(v)
		buf.WriteByte(',')
	}
	writeKey(buf, typeIDKey)
	id, err := json.Marshal(string(ent.TypeID()))
	if err != nil {
		return err
	}
	buf.Write(id)
	buf.WriteByte('}')
	return nil
}

func writeKey(buf *bytes.Buffer, name string) {
	buf.WriteByte('"')
	buf.WriteString(name)
	buf.WriteString(`":`)
}

// DecodeError is returned when one element of "log_entries" cannot be
// decoded. Decoding stops at the first such element.
type DecodeError struct {
	Index  int    // position in log_entries
	TypeID string // type_id of the element, empty if absent
	Err    error  // underlying error
}

func (e *DecodeError) Error() string {
	if e.TypeID == "" {
		return fmt.Sprintf("log entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("log entry %d (%s): %v", e.Index, e.TypeID, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MetadataDecoder converts the raw "metadata" member into a value.
type MetadataDecoder func(json.RawMessage) (any, error)

// JSONDecoder parses documents written by JSONEncoder.
//
// Without a MetadataDecoder a non-null metadata member is kept as its
// json.RawMessage.
type JSONDecoder struct {
	MetadataDecoder MetadataDecoder
}

// NewJSONDecoder returns a decoder passing metadata through unchanged.
func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{}
}

type document struct {
	LogEntries []json.RawMessage `json:"log_entries"`
	Metadata   json.RawMessage   `json:"metadata"`
}

// Decode parses data into a SessionLog.
// Absent members of an entry leave the corresponding field at its zero
// value. An unknown type_id fails the whole decode with a *DecodeError.
func (d *JSONDecoder) Decode(data []byte) (*SessionLog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode session log: %w", err)
	}

	l := &SessionLog{Entries: make([]entry.Entry, 0, len(doc.LogEntries))}
	for i, raw := range doc.LogEntries {
		ent, err := decodeEntry(raw)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Index = i
				return nil, de
			}
			return nil, &DecodeError{Index: i, Err: err}
		}
		l.Entries = append(l.Entries, ent)
	}

	if len(doc.Metadata) == 0 || bytes.Equal(doc.Metadata, []byte("null")) {
		return l, nil
	}
	if d.MetadataDecoder == nil {
		l.Metadata = doc.Metadata
		return l, nil
	}
	meta, err := d.MetadataDecoder(doc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	l.Metadata = meta
	return l, nil
}

// Read decodes a document from r.
func (d *JSONDecoder) Read(r io.Reader) (*SessionLog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return d.Decode(data)
}

func decodeEntry(raw json.RawMessage) (entry.Entry, error) {
	var fields entry.RawFields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	var id string
	if rawID, ok := fields[typeIDKey]; ok {
		if err := json.Unmarshal(rawID, &id); err != nil {
			return nil, fmt.Errorf("%w: type_id is not a string", entry.ErrUnknownTypeID)
		}
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing type_id", entry.ErrUnknownTypeID)
	}
	delete(fields, typeIDKey)

	ent, err := entry.Decode(entry.TypeID(id), fields)
	if err != nil {
		return nil, &DecodeError{TypeID: id, Err: err}
	}
	return ent, nil
}
