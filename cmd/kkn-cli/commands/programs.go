package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"malaskkn/lib/util/serviceutil"
)

func init() {
	rootCmd.AddCommand(programsCmd)
}

var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "Lists the kkn programs on the logbook.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		programs, err := service.Programs(cmd.Context(), cfg.Account())
		if err != nil {
			serviceutil.Fatal("failed to list programs", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "Id", "Title"})
		for i, program := range programs {
			t.AppendRow(table.Row{i + 1, program.Id, program.Title})
		}
		t.Render()
	},
}
