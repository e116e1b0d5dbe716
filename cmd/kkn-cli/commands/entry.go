package commands

import (
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"malaskkn/lib/scrapers/simaster/edit"
	"malaskkn/lib/timezone"
	"malaskkn/lib/util/serviceutil"
	"malaskkn/services/kkn"
)

var (
	addEntryProgram *int
	addEntryDate    *string
	addEntryLoc     *string
)

var (
	addKegiatanProgram  *int
	addKegiatanEntry    *int
	addKegiatanAt       *string
	addKegiatanDuration *time.Duration
	addKegiatanDesc     *string
)

func init() {
	addEntryProgram = addEntryCmd.Flags().IntP("program", "p", 1, "The program number (see `kkn-cli programs`).")
	addEntryDate = addEntryCmd.Flags().String("date", "", "The entry date (DD-MM-YYYY), today if unset.")
	addEntryLoc = addEntryCmd.Flags().String("location", "", "The location name to report.")
	rootCmd.AddCommand(addEntryCmd)

	addKegiatanProgram = addKegiatanCmd.Flags().IntP("program", "p", 1, "The program number (see `kkn-cli programs`).")
	addKegiatanEntry = addKegiatanCmd.Flags().IntP("entry", "e", 1, "The entry number (see `kkn-cli logbook`).")
	addKegiatanAt = addKegiatanCmd.Flags().String("at", "", "Start time (YYYY-MM-DD HH:MM), now if unset.")
	addKegiatanDuration = addKegiatanCmd.Flags().Duration("duration", time.Hour, "How long the kegiatan ran.")
	addKegiatanDesc = addKegiatanCmd.Flags().String("desc", "", "A short description.")
	rootCmd.AddCommand(addKegiatanCmd)
}

var addEntryCmd = &cobra.Command{
	Use:   "add-entry <title> [--program <n>] [--date <DD-MM-YYYY>] [--location <name>]",
	Short: "Creates a new main logbook entry.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		program, err := selectProgram(cmd.Context(), service, cfg, *addEntryProgram)
		if err != nil {
			serviceutil.Fatal("failed to select program", err)
		}

		date := *addEntryDate
		if date == "" {
			date = timezone.Now().Format("02-01-2006")
		}
		outcome, err := service.AddEntry(cmd.Context(), cfg.Account(), program, kkn.EntryRequest{
			Title:    strings.Join(args, " "),
			Date:     date,
			LocName:  *addEntryLoc,
			Location: cfg.Location(),
		})
		if err != nil {
			serviceutil.Fatal("failed to submit entry", err)
		}
		reportOutcome("add-entry", outcome)
	},
}

var addKegiatanCmd = &cobra.Command{
	Use:   "add-kegiatan <title> [--program <n>] [--entry <n>] [--at <time>] [--duration <d>]",
	Short: "Creates a kegiatan under an existing logbook entry.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		entry, err := selectEntry(cmd.Context(), service, cfg, *addKegiatanProgram, *addKegiatanEntry)
		if err != nil {
			serviceutil.Fatal("failed to select entry", err)
		}

		at := timezone.Now()
		if *addKegiatanAt != "" {
			at, err = time.ParseInLocation("2006-01-02 15:04", *addKegiatanAt, timezone.Location)
			if err != nil {
				serviceutil.Fatal("failed to parse --at", err)
			}
		}
		outcome, err := service.AddSubEntry(cmd.Context(), cfg.Account(), entry, edit.SubEntryForm{
			Title:       strings.Join(args, " "),
			Duration:    *addKegiatanDuration,
			At:          at,
			Description: *addKegiatanDesc,
		})
		if err != nil {
			serviceutil.Fatal("failed to submit kegiatan", err)
		}
		reportOutcome("add-kegiatan", outcome)
	},
}

func reportOutcome(op string, outcome edit.Outcome) {
	if outcome.OK {
		slog.Info(op+" accepted", "msg", outcome.Message)
		return
	}
	slog.Error(op+" rejected by the portal", "msg", outcome.Message)
}
