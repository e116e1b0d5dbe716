// Package kkn ties the simaster scrapers together into the operations
// the cli and daemon expose: listing programs and logbook entries,
// creating entries, and posting attendance. Every mutating operation
// is journaled to sqlite so reruns can tell what already happened.
package kkn

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"malaskkn/lib/geoutil"
	"malaskkn/lib/scrapers/simaster/edit"
	"malaskkn/lib/scrapers/simaster/logbook"
	"malaskkn/lib/timezone"
	"malaskkn/services/kkn/db"
)

type Account struct {
	Username string
	Password string
}

// Location is the reporting point for coordinate-carrying
// submissions. Coordinates are jittered uniformly over the disc of
// RadiusMeters around the point before every submission.
type Location struct {
	Latitude     float64
	Longitude    float64
	RadiusMeters float64
}

const (
	SubmissionEntry      = "entry"
	SubmissionKegiatan   = "kegiatan"
	SubmissionAttendance = "attendance"
	SubmissionPresensi   = "presensi"
)

type ServiceOptions struct {
	Sessions SessionStore
	DB       *sql.DB
	// if unspecified, a time-seeded source is used
	Rand *rand.Rand
}

type Service struct {
	sessions SessionStore
	qry      *db.Queries

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewService(opts ServiceOptions) *Service {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		sessions: opts.Sessions,
		qry:      db.New(opts.DB),
		rng:      rng,
	}
}

func (s *Service) jitter(loc Location) (float64, float64) {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return geoutil.RandomPoint(s.rng, loc.Latitude, loc.Longitude, loc.RadiusMeters)
}

func (s *Service) logbookClient(ctx context.Context, account Account) (logbook.Client, error) {
	core, err := s.sessions.Get(ctx, account.Username, account.Password)
	if err != nil {
		return logbook.Client{}, err
	}
	return logbook.NewClient(core), nil
}

func (s *Service) editClient(ctx context.Context, account Account) (edit.Client, error) {
	core, err := s.sessions.Get(ctx, account.Username, account.Password)
	if err != nil {
		return edit.Client{}, err
	}
	return edit.NewClient(core), nil
}

func (s *Service) Programs(ctx context.Context, account Account) ([]logbook.Program, error) {
	ctx, span := tracer.Start(ctx, "Programs")
	defer span.End()

	client, err := s.logbookClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client.ListPrograms(ctx)
}

func (s *Service) MainEntries(ctx context.Context, account Account, program logbook.Program) ([]logbook.MainEntry, error) {
	ctx, span := tracer.Start(ctx, "MainEntries")
	defer span.End()
	span.SetAttributes(attribute.String("program", program.Id))

	client, err := s.logbookClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client.ListMainEntries(ctx, program)
}

func (s *Service) PicEntries(ctx context.Context, account Account, program logbook.Program) ([]logbook.PicEntry, error) {
	ctx, span := tracer.Start(ctx, "PicEntries")
	defer span.End()
	span.SetAttributes(attribute.String("program", program.Id))

	client, err := s.logbookClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return client.ListPicEntries(ctx, program)
}

// EntryRequest describes a new main logbook entry. Coordinates come
// from the jittered Location, not the caller.
type EntryRequest struct {
	Title    string
	Date     string
	LocName  string
	Location Location
}

func (s *Service) AddEntry(ctx context.Context, account Account, program logbook.Program, req EntryRequest) (edit.Outcome, error) {
	ctx, span := tracer.Start(ctx, "AddEntry")
	defer span.End()

	client, err := s.editClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}

	lat, lon := s.jitter(req.Location)
	outcome, err := client.SubmitEntry(ctx, program, edit.EntryForm{
		Title:     req.Title,
		Date:      req.Date,
		Location:  req.LocName,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}
	s.record(ctx, account, SubmissionEntry, req.Title, outcome, lat, lon)
	return outcome, nil
}

func (s *Service) AddSubEntry(ctx context.Context, account Account, entry logbook.MainEntry, form edit.SubEntryForm) (edit.Outcome, error) {
	ctx, span := tracer.Start(ctx, "AddSubEntry")
	defer span.End()

	client, err := s.editClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}
	outcome, err := client.SubmitSubEntry(ctx, entry, form)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}
	s.record(ctx, account, SubmissionKegiatan, form.Title, outcome, 0, 0)
	return outcome, nil
}

func (s *Service) Attend(ctx context.Context, account Account, entry logbook.MainEntry, subTitle string, loc Location) (edit.Outcome, error) {
	ctx, span := tracer.Start(ctx, "Attend")
	defer span.End()

	client, err := s.editClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}

	lat, lon := s.jitter(loc)
	outcome, err := client.SubmitAttendance(ctx, entry, subTitle, lat, lon)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}
	s.record(ctx, account, SubmissionAttendance, subTitle, outcome, lat, lon)
	return outcome, nil
}

// DailyPresensi posts the daily location check-in. An empty date means
// today in portal time.
func (s *Service) DailyPresensi(ctx context.Context, account Account, date string, loc Location) (edit.Outcome, error) {
	ctx, span := tracer.Start(ctx, "DailyPresensi")
	defer span.End()

	if date == "" {
		// the portal takes its dates day-first
		date = timezone.Now().Format("02-01-2006")
	}
	client, err := s.editClient(ctx, account)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}

	lat, lon := s.jitter(loc)
	outcome, err := client.SubmitDailyPresensi(ctx, date, lat, lon)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return edit.Outcome{}, err
	}
	s.record(ctx, account, SubmissionPresensi, date, outcome, lat, lon)
	return outcome, nil
}

func (s *Service) Journal(ctx context.Context, username string, limit int64) ([]db.Submission, error) {
	ctx, span := tracer.Start(ctx, "Journal")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	return s.qry.ListSubmissions(ctx, db.ListSubmissionsParams{
		Username: username,
		Limit:    limit,
	})
}

// PresensiDoneToday reports whether a successful daily check-in was
// already journaled today, so the daemon does not repost after a
// restart.
func (s *Service) PresensiDoneToday(ctx context.Context, username string) (bool, error) {
	last, err := s.qry.LastSubmissionOfKind(ctx, db.LastSubmissionOfKindParams{
		Username: username,
		Kind:     SubmissionPresensi,
	})
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	now := timezone.Now()
	submitted := time.Unix(last.SubmittedAt, 0).In(timezone.Location)
	return submitted.Year() == now.Year() && submitted.YearDay() == now.YearDay(), nil
}

// record journals a submission. The journal is advisory; a write
// failure must not mask a submission that already reached the portal.
func (s *Service) record(ctx context.Context, account Account, kind, title string, outcome edit.Outcome, lat, lon float64) {
	err := s.qry.CreateSubmission(ctx, db.CreateSubmissionParams{
		Kind:        kind,
		Username:    account.Username,
		Title:       title,
		Ok:          outcome.OK,
		Message:     outcome.Message,
		Latitude:    lat,
		Longitude:   lon,
		SubmittedAt: timezone.Now().Unix(),
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to journal submission", "kind", kind, "err", err)
	}
}
