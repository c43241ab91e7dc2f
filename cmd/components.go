package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sji-bdl/bdlimport/internal/ent/geo"
	"github.com/sji-bdl/bdlimport/internal/ent/source"
	"github.com/sji-bdl/bdlimport/internal/io/apiio"
	"github.com/sji-bdl/bdlimport/internal/io/fileio"
	"github.com/sji-bdl/bdlimport/internal/io/geoio"
	"github.com/sji-bdl/bdlimport/internal/io/kvio"
	"github.com/sji-bdl/bdlimport/internal/io/sessionio"
	"github.com/sji-bdl/bdlimport/internal/io/sheetsio"
	bdlimport "github.com/sji-bdl/bdlimport/pkg"
	"github.com/sji-bdl/bdlimport/pkg/config"
)

// newBDLImport creates the importer with all its collaborators. The
// returned Locator has to be closed by the caller.
func newBDLImport(cfg config.Config) (bdlimport.BDLImport, geo.Locator) {
	api := apiio.New(cfg)
	sess := sessionio.New(cfg, api)
	loc := newLocator(cfg)
	return bdlimport.New(cfg, sess, api, loc), loc
}

// newSource returns a local file reader if a file is given, otherwise
// Google Sheets reader.
func newSource(cfg config.Config) source.Reader {
	if cfg.SourceFile == "" {
		return sheetsio.New(cfg)
	}
	src, err := fileio.New(cfg.SourceFile)
	if err != nil {
		slog.Error("Cannot use source file", "error", err)
		os.Exit(1)
	}
	return src
}

// newLocator returns a geocoder, or a Locator that knows no cities if
// geocoding is disabled or cannot start.
func newLocator(cfg config.Config) geo.Locator {
	if !cfg.WithGeocode {
		return geo.None{}
	}
	store, err := kvio.New(cfg.GeoCacheDir)
	if err != nil {
		slog.Warn("Geocoding is disabled", "error", err)
		return geo.None{}
	}
	loc, err := geoio.New(cfg, store)
	if err != nil {
		slog.Warn("Geocoding is disabled", "error", err)
		return geo.None{}
	}
	return loc
}

// runContext is cancelled by SIGINT or SIGTERM, and by the deadline if it
// is set.
func runContext(cfg config.Config) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if cfg.Deadline <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Deadline)
	return ctx, func() {
		cancel()
		stop()
	}
}
