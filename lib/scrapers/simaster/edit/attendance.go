package edit

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/scrapers/simaster/core"
	"malaskkn/lib/scrapers/simaster/logbook"
	"malaskkn/lib/textutil"
)

const presensiAddPath = "/kkn/presensi/add"

// AttendancePath holds the identifiers encoded in an attendance
// control's ajaxify url, in the order the portal appends them.
type AttendancePath struct {
	TimelineId      string
	RppJenisProgram string
	RppMhsId        string
	KegiatanMhsId   string
	ProgramMhsId    string
}

// parseAttendancePath extracts the trailing five path segments of an
// ajaxify url.
func parseAttendancePath(ajaxify string) (AttendancePath, bool) {
	trimmed := strings.Trim(ajaxify, "/")
	segments := strings.Split(trimmed, "/")
	if len(segments) < 5 || trimmed == "" {
		return AttendancePath{}, false
	}
	tail := segments[len(segments)-5:]
	for _, segment := range tail {
		if segment == "" {
			return AttendancePath{}, false
		}
	}
	return AttendancePath{
		TimelineId:      tail[0],
		RppJenisProgram: tail[1],
		RppMhsId:        tail[2],
		KegiatanMhsId:   tail[3],
		ProgramMhsId:    tail[4],
	}, true
}

// SubmitAttendance marks attendance on the kegiatan with the given
// title under a main entry. A kegiatan without an attendance control
// is not an error: the portal removes the control once attendance is
// recorded, so that case comes back as a failed Outcome instead.
func (c Client) SubmitAttendance(ctx context.Context, entry logbook.MainEntry, subTitle string, latitude float64, longitude float64) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "SubmitAttendance")
	defer span.End()

	page, err := c.Core.Http.R().
		SetContext(ctx).
		Get(entry.KegiatanUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch kegiatan page")
		return Outcome{}, &core.TransportError{URL: entry.KegiatanUrl, Err: err}
	}
	if page.StatusCode() != 200 {
		err := &core.TransportError{
			URL: entry.KegiatanUrl,
			Err: fmt.Errorf("status %d", page.StatusCode()),
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch kegiatan page")
		return Outcome{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse kegiatan page html")
		return Outcome{}, err
	}

	control := findAttendanceControl(doc, subTitle)
	if control == nil {
		return Outcome{
			OK:      false,
			Message: "no attendance action available (already attended?)",
		}, nil
	}
	ajaxify := control.AttrOr("ajaxify", "")
	path, ok := parseAttendancePath(ajaxify)
	if !ok {
		err := fmt.Errorf("malformed attendance url %q", ajaxify)
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed attendance url")
		return Outcome{}, err
	}
	span.SetAttributes(
		attribute.String("timelineId", path.TimelineId),
		attribute.String("kegiatanMhsId", path.KegiatanMhsId),
		attribute.String("programMhsId", path.ProgramMhsId),
	)
	postUrl, err := c.Core.ResolveUrl(ajaxify)
	if err != nil {
		return Outcome{}, err
	}

	token, err := c.Core.ResolveToken(
		page,
		core.TokenFromBody,
		core.TokenFromResponseCookies,
		core.TokenFromSessionCookies,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve token")
		return Outcome{}, err
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			core.TokenField: token,
			"latitude":      formatCoordinate(latitude),
			"longtitude":    formatCoordinate(longitude),
			"agreement":     "1",
		}).
		Post(postUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post attendance")
		return Outcome{}, &core.TransportError{URL: postUrl, Err: err}
	}
	c.Core.RotateTokenFromJSON(res.Body())

	outcome := interpretOutcome(res.StatusCode(), res.Body())
	if !outcome.OK {
		span.SetStatus(codes.Error, outcome.Message)
	}
	return outcome, nil
}

// findAttendanceControl finds the element carrying an ajaxify url
// inside the table row whose text mentions the kegiatan title.
func findAttendanceControl(doc *goquery.Document, subTitle string) *goquery.Selection {
	needle := textutil.NormalizeName(subTitle)
	if needle == "" {
		return nil
	}
	var control *goquery.Selection
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if !strings.Contains(textutil.NormalizeName(row.Text()), needle) {
			return true
		}
		candidate := row.Find("[ajaxify]").First()
		if candidate.Length() == 0 {
			return true
		}
		control = candidate
		return false
	})
	return control
}

// SubmitDailyPresensi records the daily location check-in. The date is
// day-first ("02-01-2006"), the way the portal renders every date; the
// token for this endpoint only ever appears in the page body.
func (c Client) SubmitDailyPresensi(ctx context.Context, date string, latitude float64, longitude float64) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "SubmitDailyPresensi")
	defer span.End()

	addUrl, err := c.Core.ResolveUrl(presensiAddPath)
	if err != nil {
		return Outcome{}, err
	}
	page, err := c.Core.Http.R().
		SetContext(ctx).
		Get(addUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch presensi page")
		return Outcome{}, &core.TransportError{URL: addUrl, Err: err}
	}
	token, err := c.Core.ResolveToken(page, core.TokenFromBody)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to resolve token")
		return Outcome{}, err
	}

	res, err := c.Core.Http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			core.TokenField:   token,
			"tanggalPresensi": date,
			"agreement":       "1",
			"latitude":        formatCoordinate(latitude),
			"longtitude":      formatCoordinate(longitude),
		}).
		Post(addUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post presensi")
		return Outcome{}, &core.TransportError{URL: addUrl, Err: err}
	}
	c.Core.RotateTokenFromJSON(res.Body())

	outcome := interpretOutcome(res.StatusCode(), res.Body())
	if !outcome.OK {
		span.SetStatus(codes.Error, outcome.Message)
	}
	return outcome, nil
}
