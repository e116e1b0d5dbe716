package edit

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/scrapers/simaster/logbook"
)

// EntryForm describes a new main logbook entry.
type EntryForm struct {
	Title    string
	Date     string // day-first portal format, e.g. "15-07-2024"
	Location string
	// Coordinates reported for the entry. Callers normally jitter
	// these with geoutil.RandomPoint before submitting.
	Latitude  float64
	Longitude float64
}

// SubEntryForm describes a kegiatan under an existing main entry.
type SubEntryForm struct {
	Title        string
	Duration     time.Duration
	At           time.Time
	Target       string
	Participants int
	Funds        int
	Description  string
	Result       string
}

// SubmitEntry creates a new main logbook entry under the given
// program. It navigates through the program's kegiatan page to its
// "Tambah" form the same way a browser would.
func (c Client) SubmitEntry(ctx context.Context, program logbook.Program, form EntryForm) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "SubmitEntry")
	defer span.End()

	addUrl, err := c.addUrlFromAction(ctx, program.ActionHtml)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate add-entry form")
		return Outcome{}, err
	}
	return c.submitForm(ctx, addUrl, map[string]string{
		"judul":      form.Title,
		"tanggal":    form.Date,
		"lokasi":     form.Location,
		"latitude":   formatCoordinate(form.Latitude),
		"longtitude": formatCoordinate(form.Longitude),
	})
}

// SubmitSubEntry creates a kegiatan under an existing main entry. The
// portal is known to reject a third kegiatan under one entry; when it
// does, its refusal message comes back verbatim in the Outcome.
func (c Client) SubmitSubEntry(ctx context.Context, entry logbook.MainEntry, form SubEntryForm) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "SubmitSubEntry")
	defer span.End()

	page, err := c.Core.Http.R().
		SetContext(ctx).
		Get(entry.KegiatanUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch kegiatan page")
		return Outcome{}, &core.TransportError{URL: entry.KegiatanUrl, Err: err}
	}
	addUrl, err := c.Core.FindLink(string(page.Body()), core.LinkAddEntry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate add-kegiatan form")
		return Outcome{}, err
	}

	target := form.Target
	if target == "" {
		target = "-"
	}
	result := form.Result
	if result == "" {
		result = "Kegiatan terlaksana dengan baik."
	}
	return c.submitForm(ctx, addUrl, map[string]string{
		"judul":       form.Title,
		"durasi":      strconv.Itoa(int(form.Duration.Minutes())),
		"pelaksanaan": form.At.Format("2006-01-02 15:04"),
		"sasaran":     target,
		"jumPeserta":  strconv.Itoa(form.Participants),
		"jumDana":     strconv.Itoa(form.Funds),
		"deskripsi":   form.Description,
		"hasil":       result,
	})
}

// addUrlFromAction walks Program.ActionHtml to the kegiatan page and
// finds the add-entry link on it.
func (c Client) addUrlFromAction(ctx context.Context, actionHtml string) (string, error) {
	kegiatanUrl, err := c.Core.FindLink(actionHtml, core.LinkKegiatanIndex)
	if err != nil {
		return "", err
	}
	page, err := c.Core.Http.R().
		SetContext(ctx).
		Get(kegiatanUrl)
	if err != nil {
		return "", &core.TransportError{URL: kegiatanUrl, Err: err}
	}
	return c.Core.FindLink(string(page.Body()), core.LinkAddEntry)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
