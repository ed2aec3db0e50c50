// Package parser turns raw VRChat log entries into structured entries.
//
// Every parser follows the same contract:
//   - (entry, nil): the raw entry was recognized and parsed
//   - (nil, nil): the raw entry is not in this parser's format (not an error)
//   - (nil, error): the raw entry is in this parser's format but malformed
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// ErrMalformedEntry is returned when a recognized entry has invalid fields,
// including an impossible date in its prefix.
var ErrMalformedEntry = errors.New("malformed entry")

// EntryParser parses one raw log entry.
type EntryParser interface {
	Parse(raw entry.Raw) (entry.Entry, error)
}

// Pseudonymizer maps user names to pseudonyms.
type Pseudonymizer interface {
	Pseudonymize(name entry.UserName) entry.PseudoUserName
}

// logPrefix matches "2022.03.04 21:50:19 Log        -  ".
// Groups 1-6 hold the date and time fields.
const logPrefix = `^(\d{4})\.(\d{2})\.(\d{2})\s+` +
	`(\d{2}):(\d{2}):(\d{2})` +
	`\s*` +
	`([A-Za-z]+)` +
	`\s*-\s+`

const timestampLayout = "2006.01.02 15:04:05"

// timestampFromMatch builds a timestamp from groups 1-6 of a prefix match.
func timestampFromMatch(m []string) (entry.Timestamp, error) {
	value := fmt.Sprintf("%s.%s.%s %s:%s:%s", m[1], m[2], m[3], m[4], m[5], m[6])
	t, err := time.ParseInLocation(timestampLayout, value, entry.DefaultLocation)
	if err != nil {
		return entry.Timestamp{}, fmt.Errorf("%w: timestamp %q: %v", ErrMalformedEntry, value, err)
	}
	return entry.NewTimestamp(t), nil
}

// parseFloat parses a float field of a recognized entry.
func parseFloat(name, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s %q is not a finite number", ErrMalformedEntry, name, value)
	}
	return f, nil
}

// parseInt parses an integer field of a recognized entry.
func parseInt(name, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %v", ErrMalformedEntry, name, value, err)
	}
	return n, nil
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
