package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"malaskkn/lib/util/serviceutil"
)

var bantuProgram *int

func init() {
	bantuProgram = bantuCmd.Flags().IntP("program", "p", 1, "The program number (see `kkn-cli programs`).")
	rootCmd.AddCommand(bantuCmd)
}

var bantuCmd = &cobra.Command{
	Use:   "bantu [--program <n>]",
	Short: "Lists the 'program bantu' entries you are helping with.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		program, err := selectProgram(cmd.Context(), service, cfg, *bantuProgram)
		if err != nil {
			serviceutil.Fatal("failed to select program", err)
		}
		entries, err := service.PicEntries(cmd.Context(), cfg.Account(), program)
		if err != nil {
			serviceutil.Fatal("failed to list program bantu entries", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "PIC", "Title", "Date", "Duration", "Status"})
		for i, entry := range entries {
			t.AppendRow(table.Row{
				i + 1,
				entry.Pic,
				entry.Title,
				entry.Date,
				entry.Duration,
				entry.AttendanceStatus(),
			})
		}
		t.Render()
	},
}
