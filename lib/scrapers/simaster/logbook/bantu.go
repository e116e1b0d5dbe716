package logbook

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/htmlutil"
	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/textutil"
)

// the "Program Bantu" region has no stable element id; it is found by
// descending from its header text
var bantuHeaderMarkers = []string{"programbantu"}

// ListPicEntries scrapes the "Program Bantu" table reachable from a
// program's RPP page: assisted programs keyed by their person in
// charge.
func (c Client) ListPicEntries(ctx context.Context, program Program) ([]PicEntry, error) {
	ctx, span := tracer.Start(ctx, "ListPicEntries")
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

	table, found := findBantuTable(doc)
	if !found {
		span.SetStatus(codes.Error, "program bantu region missing")
		return nil, &TableNotFoundError{Table: "program bantu", Snippet: snippet(res.String())}
	}

	return parsePicEntries(table), nil
}

func findBantuTable(doc *goquery.Document) (*goquery.Selection, bool) {
	var table *goquery.Selection

	doc.Find("h1,h2,h3,h4,h5,div.caption,div.portlet-title").
		EachWithBreak(func(_ int, header *goquery.Selection) bool {
			if !textutil.MatchName(header.Text(), bantuHeaderMarkers) {
				return true
			}
			for _, scope := range []*goquery.Selection{
				header.NextAllFiltered("table").First(),
				header.Parent().Find("table").First(),
				header.Parent().Parent().Find("table").First(),
			} {
				if scope.Length() > 0 {
					table = scope
					return false
				}
			}
			return true
		})

	return table, table != nil
}

// Same positional classification as the RPP table, except the second
// cell of a main row is the PIC and the fifth is the duration. The
// attended marker for a sub-row is sometimes rendered on one of the
// next two rows instead of its own (observed server inconsistency), so
// all three are checked before a kegiatan is concluded unattended.
func parsePicEntries(table *goquery.Selection) []PicEntry {
	var entries []PicEntry
	var current *PicEntry

	flush := func() {
		if current != nil {
			entries = append(entries, *current)
			current = nil
		}
	}

	rows := table.Find("tr")
	n := rows.Length()
	for i := 0; i < n; i++ {
		cells := rows.Eq(i).Find("td")
		switch {
		case cells.Length() == 5:
			flush()
			index, _ := strconv.Atoi(htmlutil.CleanText(cells.Get(0)))
			current = &PicEntry{
				Index:    index,
				Pic:      htmlutil.CleanText(cells.Get(1)),
				Title:    htmlutil.CleanText(cells.Get(2)),
				Date:     htmlutil.CleanText(cells.Get(3)),
				Duration: htmlutil.CleanText(cells.Get(4)),
			}
		case cells.Length() == 2 && htmlutil.CleanText(cells.Get(0)) == "":
			if current == nil {
				continue
			}
			sub := parseSubEntry(htmlutil.CleanText(cells.Get(1)))
			if !sub.Attended {
				// three-row lookahead heuristic
				for j := i + 1; j <= i+2 && j < n; j++ {
					lookahead := rows.Eq(j)
					if lookahead.Find("td").Length() == 2 || lookahead.Find("td").Length() == 5 {
						break
					}
					if textutil.MatchName(lookahead.Text(), attendedMarkers) {
						sub.Attended = true
						break
					}
				}
			}
			current.SubEntries = append(current.SubEntries, sub)
		default:
			// marker-only filler rows belong to the preceding kegiatan;
			// anything else closes the run
			if !textutil.MatchName(rows.Eq(i).Text(), attendedMarkers) {
				flush()
			}
		}
	}
	flush()

	return entries
}
