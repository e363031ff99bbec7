package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage the prompt library from the command line",
	Long: `Vault opens the same local cache and remote store as the server and
operates on the prompt library directly.

Commands:
  - list and filter records
  - export records to docx or pdf
  - migrate locally cached records to the remote store
  - extract text from txt, md, docx, and pdf files`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "config.toml", "base config file (PROMPTVAULT_ENV selects the overlay)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&noColor, "no-color", false, "disable colored output",
	)

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	}

	rootCmd.AddCommand(listCmd, exportCmd, migrateCmd, importCmd, statusCmd)
}
