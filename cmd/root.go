package cmd

import (
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	configPath string
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "vulnpairs",
	Short: "Vulnerable/fixed code-pair dataset extractor",
	Long: `A CLI tool that builds a labeled dataset of vulnerable/fixed source
file pairs from a list of security-fix commits.

For each input row (CVE identifier, repository URL, fix commit) it:
- Clones the repository once into a local cache
- Diffs the fix commit against its first parent
- Retrieves both versions of every modified source file
- Emits the pair labeled 0 (vulnerable) and 1 (fixed) to a CSV dataset`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(
		&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false,
		"Enable verbose output",
	)
}
