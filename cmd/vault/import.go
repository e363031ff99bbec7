package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptvault/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Extract prompt content from a txt, md, docx, or pdf file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		result, err := importer.Extract(filepath.Base(args[0]), data)
		if err != nil {
			return err
		}

		if result.Pages > 0 {
			faint.Fprintf(os.Stderr, "%s, %d pages\n", result.Type, result.Pages)
		}
		fmt.Print(result.Content)
		return nil
	},
}
