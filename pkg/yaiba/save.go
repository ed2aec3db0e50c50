package yaiba

import (
	"io"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/sessionlog"
)

// Policy presets.
var (
	// ExportAll emits every field.
	ExportAll = sessionlog.ExportAll
	// Pseudonymized emits everything except raw user names.
	Pseudonymized = sessionlog.Pseudonymized
	// Strict suppresses every classified field.
	Strict = sessionlog.Strict
)

// Save writes l to w as JSON, gated by policy.
func Save(w io.Writer, l *SessionLog, policy Policy) error {
	enc := &sessionlog.JSONEncoder{Policy: policy}
	return enc.Write(w, l)
}

// LoadOption configures Load.
type LoadOption func(*sessionlog.JSONDecoder)

// WithMetadataDecoder converts the metadata member while loading.
// Default: metadata is kept as its json.RawMessage.
func WithMetadataDecoder(fn MetadataDecoder) LoadOption {
	return func(d *sessionlog.JSONDecoder) {
		d.MetadataDecoder = fn
	}
}

// Load reads a session log written by Save.
func Load(r io.Reader, opts ...LoadOption) (*SessionLog, error) {
	dec := sessionlog.NewJSONDecoder()
	for _, opt := range opts {
		if opt != nil {
			opt(dec)
		}
	}
	return dec.Read(r)
}
