package source

import (
	"context"

	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

// Reader is the interface that wraps the Rows method.
type Reader interface {
	// Rows returns all rows of the responses sheet in their original order.
	// The first row is the header. An empty result is not an error.
	Rows(ctx context.Context) ([]report.RawRow, error)
}
