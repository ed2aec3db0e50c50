package parser

import (
	"log/slog"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// Chain tries parsers in order and returns the first result.
// The default parsers are mutually exclusive, so the order only matters
// for speed: frequent formats go first.
type Chain struct {
	parsers []EntryParser
}

// NewChain returns a chain over parsers, in order.
func NewChain(parsers ...EntryParser) *Chain {
	return &Chain{parsers: parsers}
}

// Config configures the default chain.
type Config struct {
	// TagNames are the tag marker names, in the order configured in the
	// world. Nil uses DefaultTagNames.
	TagNames []string

	// Pseudonymizer is shared by all parsers that record user names.
	Pseudonymizer Pseudonymizer

	// Logger receives parser warnings. Nil disables logging.
	Logger *slog.Logger
}

// NewDefaultChain returns the default parsers, ordered by how often their
// entries appear in a log.
func NewDefaultChain(cfg Config) *Chain {
	return NewChain(
		NewPlayerPosition(cfg.Pseudonymizer, cfg.Logger),
		NewTagMarker(cfg.TagNames),
		NewBuiltin(cfg.Pseudonymizer),
		NewQuestionnaire(),
	)
}

// Parsers returns the parsers of the chain, in order.
func (c *Chain) Parsers() []EntryParser {
	out := make([]EntryParser, len(c.parsers))
	copy(out, c.parsers)
	return out
}

// Parse implements EntryParser. A raw entry no parser recognizes yields
// (nil, nil). An error from a parser stops the chain.
func (c *Chain) Parse(raw entry.Raw) (entry.Entry, error) {
	for _, p := range c.parsers {
		e, err := p.Parse(raw)
		if err != nil {
			return nil, err
		}
		if e != nil {
			return e, nil
		}
	}
	return nil, nil
}
