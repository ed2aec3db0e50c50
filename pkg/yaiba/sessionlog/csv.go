package sessionlog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// Timestamps are written as wall time in entry.DefaultLocation, without an
// offset; microseconds appear only when non-zero.
const (
	csvTimeLayout     = "2006-01-02 15:04:05"
	csvTimeLayoutFrac = "2006-01-02 15:04:05.000000"
)

// CSVEncoder exports the entries of one variant as a table.
//
// The header lists the variant's field names allowed by Policy. Extended
// fields are only included when ExtendedColumns is set. Rows use CRLF line
// endings.
type CSVEncoder struct {
	TypeID          entry.TypeID
	Policy          Policy
	ExtendedColumns bool
}

// NewCSVEncoder returns an encoder for id with the Pseudonymized policy.
func NewCSVEncoder(id entry.TypeID) *CSVEncoder {
	return &CSVEncoder{TypeID: id, Policy: Pseudonymized()}
}

// Columns returns the header the encoder writes.
func (e *CSVEncoder) Columns() ([]string, error) {
	schema, err := entry.Schema(e.TypeID)
	if err != nil {
		return nil, fmt.Errorf("csv %q: %w", e.TypeID, err)
	}
	var cols []string
	for _, spec := range schema {
		if e.include(spec) {
			cols = append(cols, spec.Name)
		}
	}
	return cols, nil
}

func (e *CSVEncoder) include(spec entry.FieldSpec) bool {
	if spec.Extended && !e.ExtendedColumns {
		return false
	}
	return e.Policy.Allows(spec.Class)
}

// Encode returns the CSV document for l.
func (e *CSVEncoder) Encode(l *SessionLog) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Write(&buf, l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes the header and one row per entry of e.TypeID to w.
// Entries of other variants are skipped.
func (e *CSVEncoder) Write(w io.Writer, l *SessionLog) error {
	cols, err := e.Columns()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(cols); err != nil {
		return err
	}

	row := make([]string, 0, len(cols))
	for _, ent := range l.Entries {
		if ent.TypeID() != e.TypeID {
			continue
		}
		row = row[:0]
		for _, f := range ent.Fields() {
			if !e.include(f.FieldSpec) {
				continue
			}
			cell, err := formatCell(f.Value)
			if err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
			row = append(row, cell)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case entry.UserName:
		return string(v), nil
	case entry.PseudoUserName:
		return string(v), nil
	case entry.PlayerID:
		return strconv.Itoa(int(v)), nil
	case int:
		return strconv.Itoa(v), nil
	case bool:
		if v {
			return "True", nil
		}
		return "False", nil
	case float64:
		return formatFloat(v), nil
	case *float64:
		if v == nil {
			return "", nil
		}
		return formatFloat(*v), nil
	case entry.Timestamp:
		return formatTimestamp(v), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// formatFloat renders the shortest round-tripping digits. Integral values
// get a ".0" suffix; exponent form is used outside [1e-4, 1e16).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func formatTimestamp(t entry.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	local := t.In(entry.DefaultLocation)
	if local.Nanosecond() != 0 {
		return local.Format(csvTimeLayoutFrac)
	}
	return local.Format(csvTimeLayout)
}
