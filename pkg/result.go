package bdlimport

import (
	"log/slog"

	"github.com/dustin/go-humanize"
)

// Result summarizes an import run.
type Result struct {
	// Rows is the number of data rows that were processed.
	Rows int

	// Submitted is the number of created reports.
	Submitted int

	// Existing is the number of rows that already have a report in the API.
	Existing int

	// Blank is the number of rows without any data.
	Blank int

	// DryRun is the number of reports that would be created without
	// the dry-run mode.
	DryRun int

	// LastRow is the index of the last processed sheet row. A new run
	// can start from LastRow+1.
	LastRow int

	// Failures are rows that could not be checked or submitted.
	Failures []RowFailure
}

// RowFailure is an error that affected only one row.
type RowFailure struct {
	Row      int
	SourceID string
	Err      error
}

// Failed returns the number of failed rows.
func (r Result) Failed() int {
	return len(r.Failures)
}

// Log prints the summary of the run.
func (r Result) Log() {
	slog.Info("Import summary",
		"rows", humanize.Comma(int64(r.Rows)),
		"submitted", humanize.Comma(int64(r.Submitted)),
		"existing", humanize.Comma(int64(r.Existing)),
		"blank", humanize.Comma(int64(r.Blank)),
		"dry-run", humanize.Comma(int64(r.DryRun)),
		"failed", humanize.Comma(int64(r.Failed())),
		"last-row", r.LastRow,
	)
	for _, f := range r.Failures {
		slog.Warn("Skipped row", "row", f.Row, "id", f.SourceID, "error", f.Err)
	}
}
