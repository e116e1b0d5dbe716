// kknd posts the daily kkn location check-in at a random time inside
// the portal's morning window, forever.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"malaskkn/lib/configutil"
	"malaskkn/lib/telemetry"
	"malaskkn/lib/timezone"
	"malaskkn/lib/util/serviceutil"
	"malaskkn/lib/util/sqliteutil"
	"malaskkn/services/kkn"
	"malaskkn/services/kkn/db"
)

func main() {
	ctx := serviceutil.SignalContext()

	err := telemetry.SetupFromEnv(ctx, "kknd")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	telemetry.InitSlog(false)
	telemetry.InstrumentPerfStats(ctx)
	defer telemetry.Shutdown(context.Background())

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.Database == "" {
		cfg.Database = ".dev/kkn.db"
	}
	database, err := sqliteutil.OpenDB(db.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	defer database.Close()

	service := kkn.NewService(kkn.ServiceOptions{
		Sessions: kkn.NewSessionCache(kkn.SessionCacheOptions{}),
		DB:       database,
	})
	account := kkn.Account{Username: cfg.Username, Password: cfg.Password}
	home := kkn.Location{
		Latitude:     cfg.Latitude,
		Longitude:    cfg.Longitude,
		RadiusMeters: cfg.RadiusMeters,
	}

	// catch up if we restarted after the window without checking in
	done, err := service.PresensiDoneToday(ctx, account.Username)
	if err != nil {
		serviceutil.Fatal("failed to read journal", err)
	}
	if !done && timezone.Now().Hour() >= 4 {
		checkIn(ctx, service, account, home)
	}

	for {
		next, err := kkn.NextRunTime(timezone.Now())
		if err != nil {
			serviceutil.Fatal("failed to pick the next run time", err)
		}
		slog.Info("sleeping until the next check-in", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("shutting down")
			return
		case <-timer.C:
		}

		checkIn(ctx, service, account, home)
	}
}

func checkIn(ctx context.Context, service *kkn.Service, account kkn.Account, home kkn.Location) {
	outcome, err := service.DailyPresensi(ctx, account, "", home)
	if err != nil {
		slog.Error("failed to submit presensi", "err", err)
		return
	}
	if !outcome.OK {
		slog.Error("presensi rejected by the portal", "msg", outcome.Message)
		return
	}
	slog.Info("presensi accepted", "msg", outcome.Message)
}
