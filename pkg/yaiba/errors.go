package yaiba

import (
	"fmt"

	"github.com/scienceassembly/yaiba-go/internal/logfinder"
	"github.com/scienceassembly/yaiba-go/internal/parser"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// Sentinel errors returned by this package.
var (
	// ErrLogDirNotFound is returned when the VRChat log directory
	// cannot be found or accessed.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrNoLogFiles is returned when no log files are found
	// in the specified directory.
	ErrNoLogFiles = logfinder.ErrNoLogFiles

	// ErrMalformedEntry is returned when a recognized entry has invalid fields.
	ErrMalformedEntry = parser.ErrMalformedEntry

	// ErrUnknownTypeID is returned when decoding meets an unknown type id.
	ErrUnknownTypeID = entry.ErrUnknownTypeID
)

// ParseError is returned when a raw entry is in a known format but
// malformed, unless WithSkipMalformed is set.
type ParseError struct {
	Raw Raw   // the raw entry that failed
	Err error // underlying error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse entry %q: %v", shorten(string(e.Raw), 80), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// shorten cuts s to at most n runes.
func shorten(s string, n int) string {
	i := 0
	for at := range s {
		if i == n {
			return s[:at] + "..."
		}
		i++
	}
	return s
}
