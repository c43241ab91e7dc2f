package bdlimport

import (
	"context"

	"github.com/sji-bdl/bdlimport/internal/ent/source"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

// BDLImport is an interface for moving Bad Date List responses from a
// spreadsheet to the reporting API.
type BDLImport interface {
	// Import creates reports in the API for every data row of the source
	// that does not have a matching report yet. Failures of single rows
	// are collected into the Result, the error is returned only when the
	// whole import cannot continue.
	Import(ctx context.Context, src source.Reader) (Result, error)

	// Rows returns data rows of the source starting from the configured
	// start row. The header is not included.
	Rows(ctx context.Context, src source.Reader) ([]report.RawRow, error)

	// Reports returns all reports known to the API.
	Reports(ctx context.Context) ([]report.Summary, error)
}
