package commands

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"malaskkn/lib/timezone"
	"malaskkn/lib/util/serviceutil"
)

var journalLimit *int64

func init() {
	journalLimit = journalCmd.Flags().Int64P("limit", "n", 50, "How many journal rows to show.")
	rootCmd.AddCommand(journalCmd)
}

var journalCmd = &cobra.Command{
	Use:   "journal [--limit <n>]",
	Short: "Shows the local journal of past submissions.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		rows, err := service.Journal(cmd.Context(), cfg.Username, *journalLimit)
		if err != nil {
			serviceutil.Fatal("failed to read journal", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"When", "Kind", "Title", "Ok", "Message"})
		for _, row := range rows {
			t.AppendRow(table.Row{
				time.Unix(row.SubmittedAt, 0).In(timezone.Location).Format("02 Jan 15:04"),
				row.Kind,
				row.Title,
				row.Ok,
				row.Message,
			})
		}
		t.Render()
	},
}
