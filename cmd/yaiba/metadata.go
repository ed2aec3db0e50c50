package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/scienceassembly"
)

// metadataFlags describe the event a session was recorded at.
type metadataFlags struct {
	meta scienceassembly.Metadata
}

func (f *metadataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.meta.EventType, "event-type", "",
		`Event type stored as metadata (e.g. "理系集会")`)
	cmd.Flags().StringVar(&f.meta.EventDate, "event-date", "",
		"Event date stored as metadata (e.g. 2022-04-29)")
	cmd.Flags().StringVar(&f.meta.EventDescription, "event-description", "",
		"Event description stored as metadata")
	cmd.Flags().StringVar(&f.meta.EventInstance, "event-instance", "",
		"Event instance stored as metadata: main, sub, petit")
	registerInstanceCompletion(cmd, "event-instance")
}

// apply sets the event metadata on l when any event flag was given.
func (f *metadataFlags) apply(l *yaiba.SessionLog) {
	if f.meta.IsZero() {
		return
	}
	m := f.meta
	l.Metadata = &m
}

// printMetadata writes the decoded event metadata of l, one field per line.
func printMetadata(w io.Writer, l *yaiba.SessionLog) error {
	m, ok := l.Metadata.(*scienceassembly.Metadata)
	if !ok {
		_, err := fmt.Fprintln(w, "no event metadata")
		return err
	}
	_, err := fmt.Fprintf(w, "event_type\t%s\nevent_date\t%s\nevent_description\t%s\nevent_instance\t%s\n",
		m.EventType, m.EventDate, m.EventDescription, m.EventInstance)
	return err
}
