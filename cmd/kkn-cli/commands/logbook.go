package commands

import (
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"malaskkn/lib/util/serviceutil"
)

var logbookProgram *int

func init() {
	logbookProgram = logbookCmd.Flags().IntP("program", "p", 1, "The program number (see `kkn-cli programs`).")
	rootCmd.AddCommand(logbookCmd)
}

var logbookCmd = &cobra.Command{
	Use:   "logbook [--program <n>]",
	Short: "Lists the main logbook entries of a program with their kegiatan.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		program, err := selectProgram(cmd.Context(), service, cfg, *logbookProgram)
		if err != nil {
			serviceutil.Fatal("failed to select program", err)
		}
		entries, err := service.MainEntries(cmd.Context(), cfg.Account(), program)
		if err != nil {
			serviceutil.Fatal("failed to list logbook entries", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Title", "Date", "Kegiatan", "Status"})
		for i, entry := range entries {
			t.AppendRow(table.Row{
				i + 1,
				entry.Title,
				entry.Date,
				strconv.Itoa(len(entry.SubEntries)),
				entry.AttendanceStatus(),
			})
			for _, sub := range entry.SubEntries {
				status := ""
				if sub.Attended {
					status = "hadir"
				}
				t.AppendRow(table.Row{"", "  " + sub.Title, "", "", status})
			}
		}
		t.Render()
	},
}
