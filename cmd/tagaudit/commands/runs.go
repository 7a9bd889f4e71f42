package commands

import (
	"fmt"
	"time"

	"tagaudit/internal/store"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Lists the stored collection runs.",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := config.Database.OpenDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer database.Close()

		runs, err := store.NewStore(database).Runs(cmd.Context())
		if err != nil {
			return fmt.Errorf("read runs: %w", err)
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleRounded)
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Run", "Tag", "Started", "Pages", "Filtered", "Skipped", "Missing"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.ID,
				r.Tag,
				time.Unix(r.StartedAt, 0).Format(time.ANSIC),
				r.Pages,
				r.Filtered,
				r.Skipped,
				r.Missing,
			})
		}
		t.Render()
		return nil
	},
}
