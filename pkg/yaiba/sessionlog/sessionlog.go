// Package sessionlog holds the timeline of one parsed session and its
// JSON and CSV codecs.
//
// Every codec gates fields by their privacy class through a Policy. A
// suppressed field stays in the in-memory entry and is only left out of
// the serialized output.
package sessionlog

import (
	"fmt"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
)

// SessionLog is an ordered sequence of entries plus optional metadata.
// Entries keep the order in which they were encountered and are never
// re-sorted.
type SessionLog struct {
	Entries  []entry.Entry
	Metadata any
}

// New returns a SessionLog holding entries.
func New(entries []entry.Entry, metadata any) *SessionLog {
	return &SessionLog{Entries: entries, Metadata: metadata}
}

// Append adds e to the end of the log.
func (l *SessionLog) Append(e entry.Entry) {
	l.Entries = append(l.Entries, e)
}

// Len returns the number of entries.
func (l *SessionLog) Len() int {
	return len(l.Entries)
}

// Filter returns the entries of the given type, in order.
func (l *SessionLog) Filter(id entry.TypeID) []entry.Entry {
	var out []entry.Entry
	for _, e := range l.Entries {
		if e.TypeID() == id {
			out = append(out, e)
		}
	}
	return out
}

func (l *SessionLog) String() string {
	return fmt.Sprintf("SessionLog(log_entries=[%d entries], metadata=%v)", len(l.Entries), l.Metadata)
}
