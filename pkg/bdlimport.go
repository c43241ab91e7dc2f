package bdlimport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/sji-bdl/bdlimport/internal/ent/bdl"
	"github.com/sji-bdl/bdlimport/internal/ent/geo"
	"github.com/sji-bdl/bdlimport/internal/ent/session"
	"github.com/sji-bdl/bdlimport/internal/ent/source"
	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

// progressEvery is how often progress is logged, in rows.
const progressEvery = 100

// bdlimport is an implementation of BDLImport interface.
type bdlimport struct {
	cfg  config.Config
	sess session.Provider
	api  bdl.Client
	loc  geo.Locator
}

// New creates a new instance of BDLImport. If loc is nil, reports are
// created without geolocation.
func New(
	cfg config.Config,
	sess session.Provider,
	api bdl.Client,
	loc geo.Locator,
) BDLImport {
	if loc == nil {
		loc = geo.None{}
	}
	res := bdlimport{
		cfg:  cfg,
		sess: sess,
		api:  api,
		loc:  loc,
	}
	return &res
}

// Import authenticates, fetches rows and creates missing reports one row
// at a time in the order of the sheet.
func (b *bdlimport) Import(ctx context.Context, src source.Reader) (Result, error) {
	var res Result

	slog.Info("Authenticating", "server", b.cfg.BaseURL(), "user", b.cfg.APIUser)
	cred, err := b.sess.Session(ctx)
	if err != nil {
		return res, asKind(err, bdlerr.AuthenticationFailure)
	}

	rows, err := b.data(ctx, src)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		slog.Info("Nothing to import")
		return res, nil
	}

	// One job geocodes cities row by row, without a warm-up.
	if b.cfg.WithGeocode && b.cfg.JobsNum > 1 {
		if err = b.warmGeocoder(ctx, rows); err != nil {
			return res, err
		}
	}

	slog.Info("Importing rows",
		"rows", humanize.Comma(int64(len(rows))), "start-row", b.cfg.StartRow)
	for i, row := range rows {
		idx := b.cfg.StartRow + i
		if err = ctx.Err(); err != nil {
			slog.Warn("Import is interrupted", "row", idx, "error", err)
			return res, err
		}

		if err = b.importRow(ctx, idx, row, cred, &res); err != nil {
			return res, err
		}
		res.Rows++
		res.LastRow = idx
		if res.Rows%progressEvery == 0 {
			slog.Info("Progress",
				"rows", humanize.Comma(int64(res.Rows)),
				"submitted", humanize.Comma(int64(res.Submitted)),
				"row", idx,
			)
		}
	}

	slog.Info("Import is finished")
	return res, nil
}

// importRow maps, checks and submits one row. Row-scoped failures are
// recorded in res, only cancellation is returned as an error.
func (b *bdlimport) importRow(
	ctx context.Context,
	idx int,
	row report.RawRow,
	cred session.Credential,
	res *Result,
) error {
	if row.IsBlank() {
		slog.Debug("Skipping blank row", "row", idx)
		res.Blank++
		return nil
	}

	r := report.MapRow(row, idx)
	key := report.Key(row)
	slog.Debug("Processing row", "row", idx,
		"date", key.Date, "city", key.City, "name", key.Name)

	exists, err := b.api.Exists(ctx, key, cred)
	if err != nil {
		return b.rowFailure(ctx, res, r, err)
	}
	if exists {
		slog.Debug("Report already exists", "row", idx)
		res.Existing++
		return nil
	}

	if b.cfg.WithGeocode {
		r.Geolocation, err = b.loc.Locate(ctx, r.City)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Warn("Report has no geolocation", "row", idx, "city", r.City,
				"error", err)
		}
	}

	if b.cfg.DryRun {
		slog.Info("Dry run, report is not submitted", "row", idx,
			"city", r.City, "name", r.Perpetrator.Name)
		res.DryRun++
		return nil
	}

	if err = b.api.Submit(ctx, r); err != nil {
		return b.rowFailure(ctx, res, r, err)
	}
	slog.Info("Report is added", "row", idx, "date", r.Date,
		"city", r.City, "name", r.Perpetrator.Name)
	res.Submitted++
	return nil
}

func (b *bdlimport) rowFailure(
	ctx context.Context,
	res *Result,
	r report.Report,
	err error,
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	err = bdlerr.WithRow(err, r.SourceRow)
	slog.Error("Cannot import row", "row", r.SourceRow, "error", err)
	res.Failures = append(res.Failures, RowFailure{
		Row:      r.SourceRow,
		SourceID: r.SourceID,
		Err:      err,
	})
	return nil
}

// Rows returns data rows of the source, starting from StartRow.
func (b *bdlimport) Rows(ctx context.Context, src source.Reader) ([]report.RawRow, error) {
	return b.data(ctx, src)
}

// Reports returns all reports of the API.
func (b *bdlimport) Reports(ctx context.Context) ([]report.Summary, error) {
	cred, err := b.sess.Session(ctx)
	if err != nil {
		return nil, asKind(err, bdlerr.AuthenticationFailure)
	}
	return b.api.Reports(ctx, cred)
}

// data fetches rows and drops the header, rows before StartRow and rows
// after Limit.
func (b *bdlimport) data(ctx context.Context, src source.Reader) ([]report.RawRow, error) {
	rows, err := src.Rows(ctx)
	if err != nil {
		slog.Error("Cannot fetch responses", "error", err)
		return nil, asKind(err, bdlerr.SourceFetchFailure)
	}
	if len(rows) <= b.cfg.StartRow {
		return nil, nil
	}

	rows = rows[b.cfg.StartRow:]
	if b.cfg.Limit > 0 && len(rows) > b.cfg.Limit {
		rows = rows[:b.cfg.Limit]
	}
	return rows, nil
}

func (b *bdlimport) warmGeocoder(ctx context.Context, rows []report.RawRow) error {
	cities := make([]string, 0, len(rows))
	for _, row := range rows {
		cities = append(cities, row.Cell(report.ColCity))
	}
	slog.Info("Geocoding cities")
	err := b.loc.Warm(ctx, cities)
	if err != nil && ctx.Err() != nil {
		return err
	}
	if err != nil {
		slog.Warn("Geocoding warm-up failed", "error", err)
	}
	return nil
}

// asKind makes sure the error has a kind, keeping the kind it already has.
func asKind(err error, kind bdlerr.Kind) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if bdlerr.KindOf(err) != bdlerr.Unknown {
		return err
	}
	return bdlerr.New(kind, "", err)
}
