package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"malaskkn/lib/util/serviceutil"
)

var (
	attendProgram *int
	attendEntry   *int
)

func init() {
	attendProgram = attendCmd.Flags().IntP("program", "p", 1, "The program number (see `kkn-cli programs`).")
	attendEntry = attendCmd.Flags().IntP("entry", "e", 1, "The entry number (see `kkn-cli logbook`).")
	rootCmd.AddCommand(attendCmd)
}

var attendCmd = &cobra.Command{
	Use:   "attend <kegiatan title> [--program <n>] [--entry <n>]",
	Short: "Marks attendance on a kegiatan with jittered coordinates.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		entry, err := selectEntry(cmd.Context(), service, cfg, *attendProgram, *attendEntry)
		if err != nil {
			serviceutil.Fatal("failed to select entry", err)
		}

		outcome, err := service.Attend(cmd.Context(), cfg.Account(), entry, strings.Join(args, " "), cfg.Location())
		if err != nil {
			serviceutil.Fatal("failed to submit attendance", err)
		}
		reportOutcome("attend", outcome)
	},
}
