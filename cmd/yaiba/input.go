package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
)

// inputFlags select the log to parse and which entries to keep.
type inputFlags struct {
	logDir        string
	includeTypes  []string
	excludeTypes  []string
	since         string
	until         string
	skipMalformed bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.logDir, "log-dir", "d", "",
		"VRChat log directory searched when no file is given (auto-detected if not specified)")
	cmd.Flags().StringSliceVar(&f.includeTypes, "include-types", nil,
		"Type ids to include (comma-separated, e.g. vrc/player_join,vrc/player_left)")
	cmd.Flags().StringSliceVar(&f.excludeTypes, "exclude-types", nil,
		"Type ids to exclude (comma-separated)")
	cmd.Flags().StringVar(&f.since, "since", "",
		"Only entries at/after timestamp (RFC3339 format, e.g., 2022-03-04T21:00:00+09:00)")
	cmd.Flags().StringVar(&f.until, "until", "",
		"Only entries before timestamp (RFC3339 format)")
	cmd.Flags().BoolVar(&f.skipMalformed, "skip-malformed", false,
		"Skip malformed entries with a warning instead of failing")

	registerTypeIDCompletion(cmd, "include-types")
	registerTypeIDCompletion(cmd, "exclude-types")
}

// options validates the flags and converts them to parser options.
func (f *inputFlags) options() ([]yaiba.Option, error) {
	includes, err := NormalizeTypeIDs(f.includeTypes)
	if err != nil {
		return nil, err
	}
	excludes, err := NormalizeTypeIDs(f.excludeTypes)
	if err != nil {
		return nil, err
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return nil, err
	}

	sinceTime, untilTime, err := parseTimeRange(f.since, f.until)
	if err != nil {
		return nil, err
	}

	var opts []yaiba.Option
	if len(includes) > 0 || len(excludes) > 0 {
		opts = append(opts, yaiba.WithFilter(includes, excludes))
	}
	if !sinceTime.IsZero() || !untilTime.IsZero() {
		opts = append(opts, yaiba.WithTimeRange(sinceTime, untilTime))
	}
	if f.skipMalformed {
		opts = append(opts, yaiba.WithSkipMalformed(true))
	}
	return opts, nil
}

// read parses the file named by args, or the newest log in the log
// directory when args is empty.
func (f *inputFlags) read(ctx context.Context, s *settings, args []string) (*yaiba.SessionLog, error) {
	opts, err := f.options()
	if err != nil {
		return nil, err
	}
	p, err := s.parser(opts...)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		return p.ParseFile(ctx, args[0])
	}

	dir := f.logDir
	if dir == "" {
		dir = s.cfg.LogDir
	}
	return p.ParseLatest(ctx, dir)
}

// parseTimeRange parses since and until strings into time.Time values.
func parseTimeRange(since, until string) (time.Time, time.Time, error) {
	var sinceTime, untilTime time.Time
	var err error

	if since != "" {
		sinceTime, err = time.Parse(time.RFC3339, since)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --since format: %w (expected RFC3339, e.g., 2022-03-04T21:00:00+09:00)", err)
		}
	}

	if until != "" {
		untilTime, err = time.Parse(time.RFC3339, until)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --until format: %w (expected RFC3339, e.g., 2022-03-04T21:00:00+09:00)", err)
		}
	}

	if !sinceTime.IsZero() && !untilTime.IsZero() && !sinceTime.Before(untilTime) {
		return time.Time{}, time.Time{}, fmt.Errorf("--since must be before --until")
	}

	return sinceTime, untilTime, nil
}
