package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"malaskkn/lib/configutil"
	"malaskkn/lib/restyutil"
	"malaskkn/lib/util/serviceutil"
	"malaskkn/lib/util/sqliteutil"
	"malaskkn/services/kkn"
	"malaskkn/services/kkn/db"
)

var rootCmd = &cobra.Command{
	Use:   "kkn-cli",
	Short: "kkn-cli drives the simaster kkn logbook: listing, filling, and attending.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// reporting point for coordinate-carrying submissions
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	RadiusMeters float64 `json:"radius_meters"`
	// if unspecified, `.dev/kkn.db` is used
	Database string `json:"database"`
	// dump full http transcripts to .dev/resty/kkn
	DebugHttp bool `json:"debug_http"`
}

func (c Config) Account() kkn.Account {
	return kkn.Account{Username: c.Username, Password: c.Password}
}

func (c Config) Location() kkn.Location {
	return kkn.Location{
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		RadiusMeters: c.RadiusMeters,
	}
}

func setup() (*kkn.Service, Config) {
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

	var instrument restyutil.InstrumentOutput
	if cfg.DebugHttp {
		instrument = restyutil.NewFilesystemOutput(".dev/resty/kkn")
	}
	service := kkn.NewService(kkn.ServiceOptions{
		Sessions: kkn.NewSessionCache(kkn.SessionCacheOptions{
			InstrumentOutput: instrument,
		}),
		DB: database,
	})
	return service, cfg
}
