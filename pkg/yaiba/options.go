package yaiba

import (
	"log/slog"
	"time"
)

// Option configures a Parser using the functional options pattern.
type Option func(*parserConfig)

// parserConfig holds internal configuration for a Parser.
type parserConfig struct {
	tagNames      []string
	pseudonymizer Pseudonymizer
	salt          []byte
	parsers       []EntryParser
	logger        *slog.Logger
	skipMalformed bool
	maxEmptyReads int
	filter        *compiledFilter
	since         time.Time
	until         time.Time
}

// applyOptions applies functional options to a parserConfig.
func applyOptions(opts []Option) *parserConfig {
	cfg := &parserConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithTagNames sets the tag marker names, in the order configured in the
// world. Default: the Science Assembly tag list.
func WithTagNames(names ...string) Option {
	return func(c *parserConfig) {
		c.tagNames = names
	}
}

// WithPseudonymizer sets the pseudonymizer shared by all parsers.
// Overrides WithSalt.
func WithPseudonymizer(p Pseudonymizer) Option {
	return func(c *parserConfig) {
		c.pseudonymizer = p
	}
}

// WithSalt pseudonymizes user names with the given salt.
// Default: a random salt, so pseudonyms are not stable across Parsers.
func WithSalt(salt []byte) Option {
	return func(c *parserConfig) {
		c.salt = salt
	}
}

// WithParsers replaces the default parser chain wholesale.
// The parsers are tried in order and the first match wins.
func WithParsers(parsers ...EntryParser) Option {
	return func(c *parserConfig) {
		c.parsers = parsers
	}
}

// WithLogger sets the slog logger for warnings and debug output.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *parserConfig) {
		c.logger = logger
	}
}

// WithSkipMalformed logs malformed entries at warn level and continues
// instead of stopping with a *ParseError.
// Default: false.
func WithSkipMalformed(skip bool) Option {
	return func(c *parserConfig) {
		c.skipMalformed = skip
	}
}

// WithMaxEmptyReads sets how many consecutive empty reads end a stream.
// Default: 100.
func WithMaxEmptyReads(n int) Option {
	return func(c *parserConfig) {
		c.maxEmptyReads = n
	}
}

// WithIncludeTypes keeps only entries of the specified types.
// If called multiple times, only the last call takes effect.
func WithIncludeTypes(types ...TypeID) Option {
	return func(c *parserConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.include = typeSet(types)
	}
}

// WithExcludeTypes drops entries of the specified types.
// Exclude takes precedence over include.
// If called multiple times, only the last call takes effect.
func WithExcludeTypes(types ...TypeID) Option {
	return func(c *parserConfig) {
		if c.filter == nil {
			c.filter = &compiledFilter{}
		}
		c.filter.exclude = typeSet(types)
	}
}

// WithFilter sets both include and exclude type filters.
// Exclude takes precedence over include.
func WithFilter(include, exclude []TypeID) Option {
	return func(c *parserConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithTimeRange keeps only entries logged within the time range.
// since is inclusive, until is exclusive.
// Zero values are ignored (no filtering for that boundary).
func WithTimeRange(since, until time.Time) Option {
	return func(c *parserConfig) {
		c.since = since
		c.until = until
	}
}
