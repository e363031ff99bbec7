package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/promptvault/internal/library"
)

var migrateConfirm int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upload locally cached prompts missing from the remote store",
	Long: `Without --confirm, migrate prints the plan. Re-run with --confirm set to
the pending count to upload those records.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := open()
		if err != nil {
			return err
		}
		defer s.close()

		lib := s.domain.Library
		plan, err := lib.PlanMigration(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("local: %d  remote: %d  pending: %d\n", plan.Local, plan.Remote, plan.Count)
		switch plan.State {
		case library.NothingToMigrate:
			faint.Println("no local records to migrate")
			return nil
		case library.AlreadyMigrated:
			success.Println("all local records are already in the remote store")
			return nil
		}

		for _, p := range plan.Pending {
			printPrompt(p)
		}

		if migrateConfirm == 0 {
			caution.Printf("re-run with --confirm %d to upload these records\n", plan.Count)
			return nil
		}

		report, err := lib.Migrate(cmd.Context(), migrateConfirm)
		if err != nil {
			return err
		}

		success.Printf("migrated %d of %d\n", report.Succeeded, report.Attempted)
		for _, e := range report.Errors {
			failure.Println(e)
		}
		if report.Failed > 0 {
			return fmt.Errorf("%d records failed to migrate", report.Failed)
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().IntVar(&migrateConfirm, "confirm", 0, "pending record count to confirm the upload")
}
