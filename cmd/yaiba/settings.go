package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/internal/config"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
)

// settings is the resolved configuration of one command run.
type settings struct {
	cfg    config.Config
	logger *slog.Logger
}

// loadSettings loads .env files, the config file and env overrides.
func loadSettings(cmd *cobra.Command) (*settings, error) {
	if _, err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, err
	}

	return &settings{
		cfg:    config.ApplyEnvOverrides(cfg),
		logger: newLogger(cmd.ErrOrStderr(), verbose),
	}, nil
}

// newLogger returns a text logger on w. Warnings are always shown,
// debug output only when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// parser builds a Parser from the configured tag names and salt.
func (s *settings) parser(extra ...yaiba.Option) (*yaiba.Parser, error) {
	salt, err := s.cfg.SaltBytes()
	if err != nil {
		return nil, err
	}

	opts := []yaiba.Option{yaiba.WithLogger(s.logger)}
	if len(s.cfg.TagNames) > 0 {
		opts = append(opts, yaiba.WithTagNames(s.cfg.TagNames...))
	}
	if salt != nil {
		opts = append(opts, yaiba.WithSalt(salt))
	} else {
		s.logger.Debug("no salt configured, pseudonyms are random per run")
	}
	return yaiba.NewParser(append(opts, extra...)...)
}

// PolicyNames lists the accepted --policy values.
var PolicyNames = []string{"export-all", "pseudonymized", "strict"}

// policy returns the named preset, or the configured policy for "".
func (s *settings) policy(name string) (yaiba.Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return s.cfg.Policy.ToPolicy(), nil
	case "export-all":
		return yaiba.ExportAll(), nil
	case "pseudonymized":
		return yaiba.Pseudonymized(), nil
	case "strict":
		return yaiba.Strict(), nil
	default:
		return yaiba.Policy{}, fmt.Errorf("invalid policy %q: must be one of: %s", name, strings.Join(PolicyNames, ", "))
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
