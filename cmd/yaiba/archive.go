package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/internal/config"
	"github.com/scienceassembly/yaiba-go/internal/store"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/scienceassembly"
)

var (
	// archive flags
	archiveInput        inputFlags
	archiveMeta         metadataFlags
	archiveTitle        string
	archivePolicy       string
	archiveByName       bool
	archiveShowMetadata bool
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Keep parsed session logs in a local archive",
	Long: `Save, list, print and delete session logs in the local SQLite archive.

The archive location is archive_path in the config file or ` + config.EnvArchive + `.
Session logs are stored already encoded, so the export policy applies at
save time.`,
}

var archiveSaveCmd = &cobra.Command{
	Use:   "save [file] --title TITLE",
	Short: "Parse a log and save it under a title",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runArchiveSave,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived session logs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runArchiveList,
}

var archiveGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print an archived session log as JSON",
	Long: `Print an archived session log as JSON.

With --metadata only the event metadata recorded at save time is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveGet,
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an archived session log",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveDelete,
}

func init() {
	archiveInput.register(archiveSaveCmd)
	archiveMeta.register(archiveSaveCmd)
	archiveSaveCmd.Flags().StringVar(&archiveTitle, "title", "",
		"Title to save under (required, unique)")
	archiveSaveCmd.Flags().StringVar(&archivePolicy, "policy", "",
		"Export policy: export-all, pseudonymized, strict (default from config)")
	_ = archiveSaveCmd.MarkFlagRequired("title")
	registerPolicyCompletion(archiveSaveCmd, "policy")

	archiveGetCmd.Flags().BoolVar(&archiveByName, "by-title", false,
		"Treat the argument as a title instead of an id")
	archiveGetCmd.Flags().BoolVar(&archiveShowMetadata, "metadata", false,
		"Print the event metadata instead of the session log")

	archiveCmd.AddCommand(archiveSaveCmd, archiveListCmd, archiveGetCmd, archiveDeleteCmd)
	rootCmd.AddCommand(archiveCmd)
}

// openArchive opens the configured archive, creating its directory.
func openArchive(s *settings) (*store.Store, error) {
	path := s.cfg.ArchivePath
	if path == "" {
		return nil, errors.New("no archive path configured: set archive_path in the config file or " + config.EnvArchive)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	s.logger.Debug("opening archive", "path", path)
	return store.Open(path)
}

func runArchiveSave(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	policy, err := s.policy(archivePolicy)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l, err := archiveInput.read(ctx, s, args)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	archiveMeta.apply(l)

	st, err := openArchive(s)
	if err != nil {
		return err
	}
	defer st.Close()

	rec, err := st.Save(ctx, archiveTitle, l, policy)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d entries\n", rec.ID, rec.Title, rec.EntryCount)
	return nil
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openArchive(s)
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.List(commandContext(cmd))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCREATED\tENTRIES")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			rec.ID, rec.Title, rec.CreatedAt.Local().Format(time.DateTime), rec.EntryCount)
	}
	return tw.Flush()
}

func runArchiveGet(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openArchive(s)
	if err != nil {
		return err
	}
	defer st.Close()

	var a *store.Archived
	if archiveByName {
		a, err = st.GetByTitle(commandContext(cmd), args[0])
	} else {
		a, err = st.Get(commandContext(cmd), args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if archiveShowMetadata {
		l, err := a.SessionLog(scienceassembly.DecodeMetadata)
		if err != nil {
			return err
		}
		return printMetadata(out, l)
	}
	if _, err := out.Write(a.Body); err != nil {
		return fmt.Errorf("output error: %w", err)
	}
	_, err = fmt.Fprintln(out)
	return err
}

func runArchiveDelete(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openArchive(s)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Delete(commandContext(cmd), args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}
