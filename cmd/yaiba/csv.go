package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/entry"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/sessionlog"
)

var (
	// csv flags
	csvInput    inputFlags
	csvType     string
	csvExtended bool
	csvPolicy   string
	csvOutput   string
)

var csvCmd = &cobra.Command{
	Use:   "csv [file]",
	Short: "Export the entries of one type as CSV",
	Long: `Parse a VRChat log file and write the entries of one type as CSV.

The header lists the field names allowed by the export policy. Columns
added by later log schemas, such as the player velocity, are only
written with --extended.

Examples:
  # Player positions of the newest log
  yaiba csv --type yaiba/player_position > positions.csv

  # Include velocity columns
  yaiba csv --type yaiba/player_position --extended output_log.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCSV,
}

func init() {
	csvInput.register(csvCmd)
	csvCmd.Flags().StringVarP(&csvType, "type", "t", "",
		"Type id to export (required)")
	csvCmd.Flags().BoolVar(&csvExtended, "extended", false,
		"Include extended columns")
	csvCmd.Flags().StringVar(&csvPolicy, "policy", "",
		"Export policy: export-all, pseudonymized, strict (default from config)")
	csvCmd.Flags().StringVarP(&csvOutput, "output", "o", "",
		"Output file (default: stdout)")

	_ = csvCmd.MarkFlagRequired("type")
	_ = csvCmd.RegisterFlagCompletionFunc("type", completeTypeIDs("type"))
	registerPolicyCompletion(csvCmd, "policy")
}

func runCSV(cmd *cobra.Command, args []string) error {
	id, ok := entry.ParseTypeID(csvType)
	if !ok {
		return fmt.Errorf("unknown type id %q (valid: %s)", csvType, strings.Join(ValidTypeIDNames(), ", "))
	}

	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	policy, err := s.policy(csvPolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := csvInput.read(ctx, s, args)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("parse error: %w", err)
	}

	enc := &sessionlog.CSVEncoder{TypeID: id, Policy: policy, ExtendedColumns: csvExtended}
	return writeOutput(cmd, csvOutput, func(w io.Writer) error {
		return enc.Write(w, l)
	})
}
