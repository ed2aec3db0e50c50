// Package segment splits a raw VRChat log into one chunk per log entry.
//
// A chunk starts at a line carrying the log prefix
// ("2022.03.04 21:50:19 Log ...") and runs until the next such line.
// VRChat separates entries with blank lines (usually two, sometimes more)
// and entries may contain blank lines or carriage returns themselves, so
// blank lines are never treated as boundaries.
package segment

import (
	"bufio"
	"io"
	"iter"
	"regexp"
	"strings"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// DefaultMaxEmptyReads is how many consecutive empty reads end a stream.
const DefaultMaxEmptyReads = 100

// prefixRegex matches the start of a new entry: date, time, log level.
var prefixRegex = regexp.MustCompile(`^\d{4}\.\d{2}\.\d{2}\s+\d{2}:\d{2}:\d{2}\s*[A-Za-z]+`)

// LineReader yields one line per call without its line terminator.
// io.EOF signals an empty read; callers may retry.
type LineReader interface {
	ReadLine() (string, error)
}

// Reader is a LineReader over an io.Reader.
type Reader struct {
	br *bufio.Reader
}

// NewReader returns a LineReader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadLine returns the next line cleaned by CleanLine.
// A final line without terminator is returned with a nil error.
func (r *Reader) ReadLine() (string, error) {
	line, err := r.br.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return CleanLine(line), nil
		}
		return "", err
	}
	return CleanLine(line), nil
}

// CleanLine removes one trailing line terminator and replaces invalid
// UTF-8 with U+FFFD, so parsed text survives a JSON round trip unchanged.
func CleanLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return strings.ToValidUTF8(line, "\uFFFD")
}

// IsEntryStart reports whether line starts a new log entry.
func IsEntryStart(line string) bool {
	return prefixRegex.MatchString(line)
}

// Option configures Segments.
type Option func(*config)

type config struct {
	maxEmptyReads int
}

// WithMaxEmptyReads sets how many consecutive empty reads end the stream.
// Values below 1 use DefaultMaxEmptyReads.
func WithMaxEmptyReads(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEmptyReads = n
		}
	}
}

// Segments returns a lazy, single-use sequence of raw entries read from r.
//
// The buffered chunk is emitted whenever a new entry starts and once more
// at the end of the stream. Surrounding newlines are trimmed and empty
// chunks are dropped. A read error other than io.EOF is yielded once after
// the pending chunk, and ends the sequence.
func Segments(r LineReader, opts ...Option) iter.Seq2[entry.Raw, error] {
	cfg := &config{maxEmptyReads: DefaultMaxEmptyReads}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	return func(yield func(entry.Raw, error) bool) {
		var lines []string

		flush := func() bool {
			chunk := strings.Trim(strings.Join(lines, "\n"), "\r\n")
			lines = lines[:0]
			if chunk == "" {
				return true
			}
			return yield(entry.Raw(chunk), nil)
		}

		emptyReads := 0
		for emptyReads < cfg.maxEmptyReads {
			line, err := r.ReadLine()
			if err == io.EOF {
				emptyReads++
				continue
			}
			if err != nil {
				if flush() {
					yield("", err)
				}
				return
			}
			emptyReads = 0

			if IsEntryStart(line) && len(lines) > 0 {
				if !flush() {
					return // Consumer requested stop
				}
			}
			lines = append(lines, line)
		}

		flush()
	}
}
