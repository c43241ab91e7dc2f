package geo

import (
	"context"

	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

// Locator converts city names to points.
type Locator interface {
	// Locate returns a point for a city, or nil if the city is unknown.
	Locate(ctx context.Context, city string) (*report.Point, error)

	// Warm resolves a list of cities in advance.
	Warm(ctx context.Context, cities []string) error

	// Close releases resources of the Locator.
	Close() error
}

// None is a Locator that does not know any city.
type None struct{}

// Locate returns nil.
func (None) Locate(context.Context, string) (*report.Point, error) {
	return nil, nil
}

// Warm does nothing.
func (None) Warm(context.Context, []string) error {
	return nil
}

// Close does nothing.
func (None) Close() error {
	return nil
}
