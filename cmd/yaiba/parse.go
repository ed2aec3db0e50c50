package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
)

var (
	// parse flags
	parseInput  inputFlags
	parseMeta   metadataFlags
	parsePolicy string
	parseOutput string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a VRChat log file into a JSON session log",
	Long: `Parse a VRChat log file and write the session log as JSON.

Without a file argument the newest output_log_*.txt in the log directory
is parsed. Raw user names are only written when the export policy allows
them; the default policy keeps pseudonyms only.

Examples:
  # Parse the newest log in the auto-detected directory
  yaiba parse

  # Parse a specific file into session.json
  yaiba parse output_log_2022-03-04_21-50-19.txt -o session.json

  # Keep only positions within a time range
  yaiba parse --include-types yaiba/player_position \
    --since 2022-03-04T21:00:00+09:00 --until 2022-03-04T22:00:00+09:00

  # Drop every identifying field
  yaiba parse --policy strict

  # Record the event the session belongs to
  yaiba parse --event-type 理系集会 --event-date 2022-04-29 --event-instance main`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseInput.register(parseCmd)
	parseMeta.register(parseCmd)
	parseCmd.Flags().StringVar(&parsePolicy, "policy", "",
		"Export policy: export-all, pseudonymized, strict (default from config)")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "",
		"Output file (default: stdout)")
	registerPolicyCompletion(parseCmd, "policy")
}

func runParse(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	policy, err := s.policy(parsePolicy)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := parseInput.read(ctx, s, args)
	if err != nil {
		// Ctrl+C: exit silently
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("parse error: %w", err)
	}
	parseMeta.apply(l)

	return writeOutput(cmd, parseOutput, func(w io.Writer) error {
		return yaiba.Save(w, l, policy)
	})
}

// writeOutput runs write against the named file, or stdout for "".
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		if err := write(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("output error: %w", err)
	}
	return f.Close()
}
