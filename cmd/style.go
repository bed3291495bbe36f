package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var styleCmd = &cobra.Command{
	Use:   "style",
	Short: "Inspect the classification vocabulary",
}

var styleDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the effective vocabulary as YAML",
	Long: `Print the vocabulary tables used for classification as YAML: the
built-in defaults, overlaid with --style when given. The output can be
edited and passed back with --style.`,
	Args: cobra.NoArgs,
	Run:  runStyleDump,
}

func init() {
	rootCmd.AddCommand(styleCmd)
	styleCmd.AddCommand(styleDumpCmd)
}

func runStyleDump(cmd *cobra.Command, args []string) {
	st, err := loadStyle()
	if err != nil {
		exitWithError("failed to load style", err)
	}
	data, err := st.Config().Marshal()
	if err != nil {
		exitWithError("failed to encode style", err)
	}
	if _, err := os.Stdout.Write(data); err != nil {
		exitWithError("failed to write style", err)
	}
}
