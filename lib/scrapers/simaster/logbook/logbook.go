// Package logbook scrapes the KKN logbook out of simaster's
// server-rendered pages: the program list, each program's main entries
// with their nested kegiatan sub-entries, and the "Program Bantu"
// (PIC-assisted) region.
package logbook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/scrapers/simaster/core"
)

const (
	homePath = "/beranda"
	// the portal's DataTables endpoints page by a fixed size
	pageLength = "25"

	StatusAttended    = "Sudah Presensi"
	StatusNotAttended = "Belum Presensi"
)

// markers are matched against normalized text; only the affirmative
// string the server renders on an attended kegiatan counts. The absence
// of a "Presensi" button proves nothing.
var attendedMarkers = []string{"sudahpresensi"}

type Program struct {
	Id    string
	Title string
	// raw "action" html fragment from the data endpoint; follow-on
	// urls (the rpp/kegiatan index) are pattern-matched out of it
	ActionHtml string
}

type SubEntry struct {
	Title string
	// zero and Scheduled == false when the datetime range didn't parse;
	// callers must then treat the kegiatan as unscheduled, not error
	Start     time.Time
	End       time.Time
	Scheduled bool
	// free text, not always numeric ("120 menit", "2 jam")
	Duration string
	Attended bool
	Raw      string
}

type MainEntry struct {
	// 1-based, server-assigned, not necessarily contiguous; order
	// follows the server's row order
	Index       int
	Title       string
	Date        string
	Location    string
	KegiatanUrl string
	SubEntries  []SubEntry
}

// AttendanceStatus derives the entry-level status: attended only when
// there is at least one sub-entry and every one of them is attended.
func (e MainEntry) AttendanceStatus() string {
	if len(e.SubEntries) == 0 {
		return StatusNotAttended
	}
	for _, sub := range e.SubEntries {
		if !sub.Attended {
			return StatusNotAttended
		}
	}
	return StatusAttended
}

// PicEntry is a "Program Bantu" row: same shape as a main entry but
// keyed additionally by the person in charge, with the activity
// duration where a main entry carries a location.
type PicEntry struct {
	Index      int
	Pic        string
	Title      string
	Date       string
	Duration   string
	SubEntries []SubEntry
}

func (e PicEntry) AttendanceStatus() string {
	return MainEntry{SubEntries: e.SubEntries}.AttendanceStatus()
}

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) Client {
	return Client{Core: coreClient}
}

type programRow struct {
	Id     string `json:"program_mhs_id"`
	Title  string `json:"program_mhs_judul"`
	Action string `json:"action"`
}

type programPage struct {
	Data      []programRow `json:"data"`
	CsrfValue string       `json:"csrf_value"`
}

// ListPrograms walks home page -> logbook index -> data endpoint and
// parses the returned json rows. The endpoint rotates the anti-forgery
// token inside its response, so the session token is updated before
// returning.
func (c Client) ListPrograms(ctx context.Context) ([]Program, error) {
	ctx, span := tracer.Start(ctx, "ListPrograms")
	defer span.End()

	home, err := c.Core.Http.R().
		SetContext(ctx).
		Get(homePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch home page")
		return nil, &core.TransportError{URL: homePath, Err: err}
	}

	indexUrl, err := c.Core.FindLink(home.String(), core.LinkLogbookIndex)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate logbook index")
		return nil, err
	}

	index, err := c.Core.Http.R().
		SetContext(ctx).
		Get(indexUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch logbook index")
		return nil, &core.TransportError{URL: indexUrl, Err: err}
	}

	dataUrl, err := c.Core.FindLink(index.String(), core.LinkDataEndpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to locate data endpoint")
		return nil, err
	}
	token, err := c.Core.ResolveToken(
		index,
		core.TokenFromBody,
		core.TokenFromResponseCookies,
		core.TokenFromSessionCookies,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve token for data endpoint")
		return nil, err
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"draw":          "1",
			"start":         "0",
			"length":        pageLength,
			core.TokenField: token,
		}).
		Post(dataUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch program data")
		return nil, &core.TransportError{URL: dataUrl, Err: err}
	}
	if res.StatusCode() != 200 {
		span.SetStatus(codes.Error, "data endpoint returned a non-200 status")
		return nil, &core.TransportError{
			URL: dataUrl,
			Err: fmt.Errorf("status %d", res.StatusCode()),
		}
	}

	var page programPage
	err = json.Unmarshal(res.Body(), &page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "data endpoint did not return json")
		return nil, fmt.Errorf("unexpected program data response from %s: %w", dataUrl, err)
	}
	c.Core.SetToken(page.CsrfValue)

	programs := make([]Program, 0, len(page.Data))
	for _, row := range page.Data {
		programs = append(programs, Program{
			Id:         row.Id,
			Title:      row.Title,
			ActionHtml: row.Action,
		})
	}
	return programs, nil
}
