package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptvault/internal/prompts"
)

var exportFlags struct {
	format   string
	all      bool
	category string
	search   string
	outDir   string
}

var exportCmd = &cobra.Command{
	Use:   "export [id...]",
	Short: "Export the given prompts (or a filtered set) as a teaching document",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !exportFlags.all {
			return errors.New("pass prompt ids or --all")
		}

		s, err := open()
		if err != nil {
			return err
		}
		defer s.close()
		s.load(cmd.Context())

		lib := s.domain.Library
		ids := args
		if exportFlags.all {
			filter := prompts.Filter{Category: exportFlags.category, Search: exportFlags.search}
			ids = lo.Map(filter.Apply(lib.Records()), func(p prompts.Prompt, _ int) string {
				return p.ID
			})
		}
		lib.Select(ids...)

		doc, err := s.domain.Exporter.Export(cmd.Context(), exportFlags.format)
		if err != nil {
			return err
		}

		path := filepath.Join(exportFlags.outDir, doc.Filename)
		if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		success.Printf("exported %d prompts to %s\n", doc.Records, path)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFlags.format, "format", "f", "", "docx or pdf (default from config)")
	f.BoolVar(&exportFlags.all, "all", false, "export every prompt matching --type and --search")
	f.StringVarP(&exportFlags.category, "type", "t", "", "category filter with --all")
	f.StringVarP(&exportFlags.search, "search", "s", "", "title or tag filter with --all")
	f.StringVarP(&exportFlags.outDir, "out", "o", ".", "output directory")
}
