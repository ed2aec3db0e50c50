package yaiba

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/scienceassembly/yaiba-go/internal/logfinder"
	"github.com/scienceassembly/yaiba-go/internal/parser"
	"github.com/scienceassembly/yaiba-go/internal/segment"
	"github.com/scienceassembly/yaiba-go/internal/tailer"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/pseudonym"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/sessionlog"
)

// Parser turns raw VRChat logs into SessionLogs.
type Parser struct {
	cfg           *parserConfig
	pseudonymizer Pseudonymizer
	logger        *slog.Logger
}

// NewParser creates a Parser with the given options.
//
// Without WithPseudonymizer or WithSalt a random salt is generated.
//
// Example:
//
//	p, err := yaiba.NewParser(
//	    yaiba.WithSalt(salt),
//	    yaiba.WithIncludeTypes(yaiba.TypePlayerJoin, yaiba.TypePlayerLeft),
//	)
func NewParser(opts ...Option) (*Parser, error) {
	cfg := applyOptions(opts)

	if cfg.maxEmptyReads < 0 {
		return nil, fmt.Errorf("max empty reads must not be negative: %d", cfg.maxEmptyReads)
	}
	if !cfg.since.IsZero() && !cfg.until.IsZero() && !cfg.since.Before(cfg.until) {
		return nil, errors.New("time range: since must be before until")
	}

	p := &Parser{cfg: cfg, logger: cfg.logger}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}

	switch {
	case cfg.pseudonymizer != nil:
		p.pseudonymizer = cfg.pseudonymizer
	case cfg.salt != nil:
		p.pseudonymizer = pseudonym.New(cfg.salt)
	default:
		random, err := pseudonym.NewRandom()
		if err != nil {
			return nil, err
		}
		p.pseudonymizer = random
	}
	return p, nil
}

// Pseudonymizer returns the pseudonymizer used by the default chain.
func (p *Parser) Pseudonymizer() Pseudonymizer {
	return p.pseudonymizer
}

// newChain returns a fresh chain for one parse run, so that stateful
// default parsers never carry state from one log into another.
func (p *Parser) newChain() parser.EntryParser {
	if p.cfg.parsers != nil {
		parsers := make([]parser.EntryParser, len(p.cfg.parsers))
		for i, ep := range p.cfg.parsers {
			parsers[i] = ep
		}
		return parser.NewChain(parsers...)
	}
	return parser.NewDefaultChain(parser.Config{
		TagNames:      p.cfg.tagNames,
		Pseudonymizer: p.pseudonymizer,
		Logger:        p.cfg.logger,
	})
}

// Entries returns a lazy iterator over the entries read from r.
//
// The iterator yields (Entry, error) pairs. When an error occurs:
//   - Read errors: yields (nil, error) once and stops
//   - Malformed entries: yields a *ParseError and stops, or logs a warning
//     and continues if WithSkipMalformed is set
//
// The iterator is single-use: r is consumed.
func (p *Parser) Entries(r LineReader) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		chain := p.newChain()

		for raw, err := range segment.Segments(r, segment.WithMaxEmptyReads(p.cfg.maxEmptyReads)) {
			if err != nil {
				yield(nil, err)
				return
			}

			e, err := chain.Parse(raw)
			if err != nil {
				if !p.cfg.skipMalformed {
					yield(nil, &ParseError{Raw: raw, Err: err})
					return
				}
				p.logger.Warn("skipping malformed entry", "error", err)
				continue
			}
			if e == nil {
				continue // Not a recognized entry
			}

			if !p.cfg.filter.Allows(e.TypeID()) {
				continue
			}
			at := e.At()
			if !p.cfg.since.IsZero() && at.Before(p.cfg.since) {
				continue
			}
			if !p.cfg.until.IsZero() && !at.Before(p.cfg.until) {
				return // Past the time window, stop iteration
			}

			if !yield(e, nil) {
				return // Consumer requested stop (break)
			}
		}
	}
}

// collect drains seq into a SessionLog. On error the entries collected so
// far are returned with it.
func collect(seq iter.Seq2[Entry, error]) (*SessionLog, error) {
	l := sessionlog.New(make([]entry.Entry, 0, 256), nil)
	for e, err := range seq {
		if err != nil {
			return l, err
		}
		l.Append(e)
	}
	return l, nil
}

// ParseReader parses the whole stream r.
func (p *Parser) ParseReader(r io.Reader) (*SessionLog, error) {
	return collect(p.Entries(segment.NewReader(r)))
}

// ParseString parses a log held in memory.
func (p *Parser) ParseString(s string) (*SessionLog, error) {
	return p.ParseReader(strings.NewReader(s))
}

// ParseFile parses the log file at path.
// Canceling ctx aborts the read and returns ctx.Err().
func (p *Parser) ParseFile(ctx context.Context, path string) (*SessionLog, error) {
	if path == "" {
		return nil, errors.New("yaiba: path required")
	}

	fr, err := tailer.Open(ctx, path, tailer.DefaultConfig())
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	p.logger.Debug("parsing log file", "path", path)
	return collect(p.Entries(fr))
}

// ParseLatest parses the newest log file in dir. An empty dir is
// auto-detected.
func (p *Parser) ParseLatest(ctx context.Context, dir string) (*SessionLog, error) {
	dir, err := logfinder.FindLogDir(dir)
	if err != nil {
		return nil, err
	}
	path, err := logfinder.FindLatestLogFile(dir)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(ctx, path)
}
