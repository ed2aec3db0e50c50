package main

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scienceassembly/yaiba-go/pkg/yaiba/scienceassembly"
)

// shells lists the supported shells with their script generators.
var shells = []struct {
	name string
	gen  func(root *cobra.Command, w io.Writer) error
}{
	{"bash", func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) }},
	{"zsh", (*cobra.Command).GenZshCompletion},
	{"fish", func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) }},
	{"powershell", (*cobra.Command).GenPowerShellCompletionWithDesc},
}

func shellNames() []string {
	names := make([]string, len(shells))
	for i, sh := range shells {
		names[i] = sh.name
	}
	return names
}

var completionCmd = &cobra.Command{
	Use:   "completion SHELL",
	Short: "Print a shell completion script",
	Long: `Print the completion script for bash, zsh, fish or powershell.

Load it into the current shell, e.g.:
  source <(yaiba completion bash)
  yaiba completion fish | source

or save it where the shell looks for completions, e.g.:
  yaiba completion zsh > "${fpath[1]}/_yaiba"`,
	DisableFlagsInUseLine: true,
	ValidArgs:             shellNames(),
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, sh := range shells {
			if sh.name == args[0] {
				return sh.gen(cmd.Root(), cmd.OutOrStdout())
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// splitCompletion splits a comma-separated flag value being typed into the
// values already typed (as a prefix to keep) and the value being completed.
func splitCompletion(toComplete string) (done []string, prefix, current string) {
	i := strings.LastIndexByte(toComplete, ',')
	if i < 0 {
		return nil, "", normalizeTypeID(toComplete)
	}
	return strings.Split(toComplete[:i], ","), toComplete[:i+1], normalizeTypeID(toComplete[i+1:])
}

// usedTypeIDs collects the type ids already typed or already set on the
// flag, so that repeated flags and comma lists never offer one twice.
func usedTypeIDs(cmd *cobra.Command, flagName string, typed []string) map[string]bool {
	used := make(map[string]bool)
	set, _ := cmd.Flags().GetStringSlice(flagName)
	for _, v := range append(typed, set...) {
		if v = normalizeTypeID(v); v != "" {
			used[v] = true
		}
	}
	return used
}

// completeTypeIDs completes comma-separated type ids for flagName.
// Candidates carry the already typed prefix, which every shell handles.
func completeTypeIDs(flagName string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		typed, prefix, current := splitCompletion(toComplete)
		used := usedTypeIDs(cmd, flagName, typed)

		var out []cobra.Completion
		for _, id := range ValidTypeIDNames() {
			if !used[id] && strings.HasPrefix(id, current) {
				out = append(out, prefix+id)
			}
		}
		return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}

func registerTypeIDCompletion(cmd *cobra.Command, flagName string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, completeTypeIDs(flagName))
}

func registerPolicyCompletion(cmd *cobra.Command, flagName string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, cobra.FixedCompletions(PolicyNames, cobra.ShellCompDirectiveNoFileComp))
}

func registerInstanceCompletion(cmd *cobra.Command, flagName string) {
	instances := []string{scienceassembly.InstanceMain, scienceassembly.InstanceSub, scienceassembly.InstancePetit}
	_ = cmd.RegisterFlagCompletionFunc(flagName, cobra.FixedCompletions(instances, cobra.ShellCompDirectiveNoFileComp))
}

func normalizeTypeID(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
