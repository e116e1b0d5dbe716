package commands

import (
	"github.com/spf13/cobra"

	"malaskkn/lib/util/serviceutil"
)

var presensiDate *string

func init() {
	presensiDate = presensiCmd.Flags().String("date", "", "The check-in date (DD-MM-YYYY), today if unset.")
	rootCmd.AddCommand(presensiCmd)
}

var presensiCmd = &cobra.Command{
	Use:   "presensi [--date <DD-MM-YYYY>]",
	Short: "Posts the daily location check-in.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		outcome, err := service.DailyPresensi(cmd.Context(), cfg.Account(), *presensiDate, cfg.Location())
		if err != nil {
			serviceutil.Fatal("failed to submit presensi", err)
		}
		reportOutcome("presensi", outcome)
	},
}
