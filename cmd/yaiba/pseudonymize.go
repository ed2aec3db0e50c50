package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/internal/config"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba"
	"github.com/scienceassembly/yaiba-go/pkg/yaiba/pseudonym"
)

var pseudonymizeCmd = &cobra.Command{
	Use:   "pseudonymize NAME...",
	Short: "Print the pseudonyms of user names",
	Long: `Print the pseudonym of each user name with the configured salt, one
tab-separated "name<TAB>pseudonym" pair per line.

Use it to find a participant in an exported session log without exporting
raw names. The salt must be configured (salt in the config file or ` + config.EnvSalt + `).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPseudonymize,
}

var saltCmd = &cobra.Command{
	Use:   "salt",
	Short: "Generate a random pseudonymization salt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pseudonym.NewRandom()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), pseudonym.EncodeSalt(p.Salt()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pseudonymizeCmd)
	rootCmd.AddCommand(saltCmd)
}

func runPseudonymize(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	salt, err := s.cfg.SaltBytes()
	if err != nil {
		return err
	}
	if salt == nil {
		return errors.New("no salt configured: set salt in the config file or " + config.EnvSalt)
	}

	p := pseudonym.New(salt)
	out := cmd.OutOrStdout()
	for _, name := range args {
		fmt.Fprintf(out, "%s\t%s\n", name, p.Pseudonymize(yaiba.UserName(name)))
	}
	return nil
}
