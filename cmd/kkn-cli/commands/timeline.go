package commands

import (
	"fmt"
	"os"
	"sort"

	ics "github.com/arran4/golang-ical"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"malaskkn/lib/scrapers/simaster/logbook"
	"malaskkn/lib/timezone"
	"malaskkn/lib/util/serviceutil"
)

var (
	timelineProgram *int
	timelineIcs     *string
)

func init() {
	timelineProgram = timelineCmd.Flags().IntP("program", "p", 1, "The program number (see `kkn-cli programs`).")
	timelineIcs = timelineCmd.Flags().String("ics", "", "Also write the timeline as an iCalendar file.")
	rootCmd.AddCommand(timelineCmd)
}

// timelineItem is one scheduled kegiatan, from your own entries or the
// ones you are helping with.
type timelineItem struct {
	sub    logbook.SubEntry
	parent string
	bantu  bool
}

var timelineCmd = &cobra.Command{
	Use:   "timeline [--program <n>] [--ics <path/to/out.ics>]",
	Short: "Shows every scheduled kegiatan of a program in chronological order.",
	Run: func(cmd *cobra.Command, args []string) {
		service, cfg := setup()

		program, err := selectProgram(cmd.Context(), service, cfg, *timelineProgram)
		if err != nil {
			serviceutil.Fatal("failed to select program", err)
		}
		entries, err := service.MainEntries(cmd.Context(), cfg.Account(), program)
		if err != nil {
			serviceutil.Fatal("failed to list logbook entries", err)
		}
		bantu, err := service.PicEntries(cmd.Context(), cfg.Account(), program)
		if err != nil {
			serviceutil.Fatal("failed to list program bantu entries", err)
		}

		var items []timelineItem
		for _, entry := range entries {
			for _, sub := range entry.SubEntries {
				// a kegiatan whose datetime range didn't parse has no
				// place on a timeline
				if !sub.Scheduled {
					continue
				}
				items = append(items, timelineItem{sub: sub, parent: entry.Title})
			}
		}
		for _, entry := range bantu {
			for _, sub := range entry.SubEntries {
				if !sub.Scheduled {
					continue
				}
				items = append(items, timelineItem{sub: sub, parent: entry.Title, bantu: true})
			}
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].sub.Start.Before(items[j].sub.Start)
		})

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Start", "End", "Kegiatan", "Under", "Bantu", "Attended"})
		for _, item := range items {
			t.AppendRow(table.Row{
				item.sub.Start.Format("02 Jan 15:04"),
				item.sub.End.Format("15:04"),
				item.sub.Title,
				item.parent,
				item.bantu,
				item.sub.Attended,
			})
		}
		t.Render()

		if *timelineIcs != "" {
			err := writeIcs(*timelineIcs, program, items)
			if err != nil {
				serviceutil.Fatal("failed to write ics file", err)
			}
		}
	},
}

func writeIcs(path string, program logbook.Program, items []timelineItem) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	now := timezone.Now()
	for i, item := range items {
		event := cal.AddEvent(fmt.Sprintf("kkn-%s-%d", program.Id, i))
		event.SetCreatedTime(now)
		event.SetStartAt(item.sub.Start)
		event.SetEndAt(item.sub.End)
		event.SetSummary(item.sub.Title)
		event.SetDescription(item.parent)
	}
	return os.WriteFile(path, []byte(cal.Serialize()), 0644)
}
