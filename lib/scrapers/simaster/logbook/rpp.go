package logbook

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/htmlutil"
	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/textutil"
)

// the RPP report table's element id
const rppTableId = "tb_rpp"

// sub-entry cell shape: "<title> (<datetime range> WIB) [<duration>]"
var subEntryRegex = regexp.MustCompile(`^(.*?)\s*\((.+?)\s*WIB\)\s*\[(.+?)\]`)

// ListMainEntries fetches a program's RPP report page and parses its
// entry table into main entries with nested sub-entries.
func (c Client) ListMainEntries(ctx context.Context, program Program) ([]MainEntry, error) {
	ctx, span := tracer.Start(ctx, "ListMainEntries")
	defer span.End()

	rppUrl, err := c.Core.FindLink(program.ActionHtml, core.LinkKegiatanIndex)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate rpp page in program action")
		return nil, err
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		Get(rppUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch rpp page")
		return nil, &core.TransportError{URL: rppUrl, Err: err}
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, "rpp page returned a non-200 status")
		return nil, &core.TransportError{
			URL: rppUrl,
			Err: fmt.Errorf("status %d", res.StatusCode()),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse rpp html")
		return nil, err
	}

	table := doc.Find("table#" + rppTableId)
	if table.Length() == 0 {
		span.SetStatus(codes.Error, "rpp table missing")
		return nil, &TableNotFoundError{Table: rppTableId, Snippet: snippet(res.String())}
	}

	return c.parseMainEntries(table), nil
}

// Row classification is positional, not semantic: a row with exactly 5
// cells is a main entry, a row with exactly 2 cells whose first cell is
// empty is a sub-entry of the most recent main entry, and any other
// shape both gets skipped and closes the current sub-entry run.
func (c Client) parseMainEntries(table *goquery.Selection) []MainEntry {
	var entries []MainEntry
	var current *MainEntry

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		switch {
		case cells.Length() == 5:
			flush()
			entry := c.mainEntryFromCells(cells)
			current = &entry
		case cells.Length() == 2 && htmlutil.CleanText(cells.Get(0)) == "":
			if current == nil {
				return
			}
			raw := htmlutil.CleanText(cells.Get(1))
			current.SubEntries = append(current.SubEntries, parseSubEntry(raw))
		default:
			flush()
		}
	})
	flush()

	return entries
}

func (c Client) mainEntryFromCells(cells *goquery.Selection) MainEntry {
	// server-assigned, opaque; rows stay in server order even when the
	// indices are not contiguous
	index, _ := strconv.Atoi(htmlutil.CleanText(cells.Get(0)))

	entry := MainEntry{
		Index:    index,
		Title:    htmlutil.CleanText(cells.Get(1)),
		Date:     htmlutil.CleanText(cells.Get(2)),
		Location: htmlutil.CleanText(cells.Get(3)),
	}

	actionHtml, err := cells.Eq(4).Html()
	if err == nil {
		kegiatanUrl, err := c.Core.FindLink(actionHtml, core.LinkKegiatanIndex)
		if err == nil {
			entry.KegiatanUrl = kegiatanUrl
		}
	}
	return entry
}

func parseSubEntry(raw string) SubEntry {
	sub := SubEntry{
		Raw:      raw,
		Attended: textutil.MatchName(raw, attendedMarkers),
	}

	groups := subEntryRegex.FindStringSubmatch(raw)
	if groups == nil {
		// tolerate the portal's free-form text: keep the full text as
		// the title instead of discarding the record
		sub.Title = raw
		return sub
	}

	sub.Title = groups[1]
	sub.Duration = groups[3]
	sub.Start, sub.End, sub.Scheduled = ParseDatetimeRange(groups[2])
	return sub
}
