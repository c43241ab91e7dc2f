package bdl

import (
	"context"

	"github.com/sji-bdl/bdlimport/internal/ent/session"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

// Client is the reporting API of the Bad Date List.
type Client interface {
	session.Authenticator

	// Search finds reports that match the key. How fields are matched is
	// decided by the API.
	Search(
		ctx context.Context,
		key report.SearchKey,
		cred session.Credential,
	) ([]report.Summary, error)

	// Exists checks if at least one report matches the key.
	Exists(
		ctx context.Context,
		key report.SearchKey,
		cred session.Credential,
	) (bool, error)

	// Submit creates a new report. It does not need a session.
	Submit(ctx context.Context, r report.Report) error

	// Reports returns all reports known to the API.
	Reports(ctx context.Context, cred session.Credential) ([]report.Summary, error)
}
