package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptvault/internal/prompts"
	"github.com/JaimeStill/promptvault/pkg/pagination"
	"github.com/JaimeStill/promptvault/pkg/query"
)

var listFlags struct {
	category string
	model    string
	search   string
	sort     string
	page     int
	pageSize int
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts matching the given filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open()
		if err != nil {
			return err
		}
		defer s.close()
		s.load(cmd.Context())

		req := pagination.PageRequest{
			Page:     listFlags.page,
			PageSize: listFlags.pageSize,
			Sort:     query.ParseSortFields(listFlags.sort),
		}
		req.Normalize(s.cfg.API.Pagination)

		filter := prompts.Filter{
			Category: listFlags.category,
			Model:    listFlags.model,
			Search:   listFlags.search,
		}
		result := s.domain.Library.List(filter, req)

		for _, p := range result.Data {
			printPrompt(p)
		}
		faint.Printf("page %d of %d, %d prompts\n", result.Page, result.TotalPages, result.Total)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library sync status and known models",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open()
		if err != nil {
			return err
		}
		defer s.close()
		s.load(cmd.Context())

		st := s.domain.Library.Status()
		fmt.Printf("records:  %d\n", st.Records)
		if st.Synced {
			success.Printf("synced:   %s\n", st.LastSync.Format("2006-01-02 15:04:05"))
		} else {
			failure.Printf("synced:   no (%s)\n", st.LastError)
		}
		fmt.Printf("models:   %v\n", s.domain.Library.Models())
		return nil
	},
}

func init() {
	f := listCmd.Flags()
	f.StringVarP(&listFlags.category, "type", "t", "", "category filter (Text, Image-generation, Video, Audio, Other)")
	f.StringVarP(&listFlags.model, "model", "m", "", "model filter")
	f.StringVarP(&listFlags.search, "search", "s", "", "match title or tags")
	f.StringVar(&listFlags.sort, "sort", "", "sort fields, e.g. title or -createdAt")
	f.IntVar(&listFlags.page, "page", 1, "page number")
	f.IntVar(&listFlags.pageSize, "page-size", 0, "page size (0 uses the configured default)")
}
