// Package bdlerr provides error kinds of the importer. Every error keeps
// the context needed to diagnose it: the row index, the endpoint and the
// underlying cause.
package bdlerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a category of an error.
type Kind int

const (
	// Unknown is an error that does not belong to any other kind.
	Unknown Kind = iota

	// ConfigFailure happens when settings are invalid.
	ConfigFailure

	// AuthenticationFailure happens when login is rejected or the session
	// cannot be obtained.
	AuthenticationFailure

	// SourceFetchFailure happens when rows cannot be read from the
	// spreadsheet.
	SourceFetchFailure

	// SearchFailure happens when the API cannot answer if a report exists.
	SearchFailure

	// SubmissionFailure happens when the API rejects a new report.
	SubmissionFailure

	// GeocodeFailure happens when a city cannot be converted to a point.
	GeocodeFailure
)

var kindStrings = map[Kind]string{
	Unknown:               "unknown",
	ConfigFailure:         "config failure",
	AuthenticationFailure: "authentication failure",
	SourceFetchFailure:    "source fetch failure",
	SearchFailure:         "search failure",
	SubmissionFailure:     "submission failure",
	GeocodeFailure:        "geocode failure",
}

// String returns a human-readable name of the kind.
func (k Kind) String() string {
	if res, ok := kindStrings[k]; ok {
		return res
	}
	return kindStrings[Unknown]
}

// IsRowScoped is true for errors that affect only one row. Such errors
// do not stop the import.
func (k Kind) IsRowScoped() bool {
	return k == SearchFailure || k == SubmissionFailure || k == GeocodeFailure
}

// Error is an error of a known kind with its context.
type Error struct {
	Kind Kind

	// Row is the index of the sheet row, 0 if the error is not related to
	// a row.
	Row int

	// Endpoint is the URL or the resource that was used.
	Endpoint string

	// Err is the underlying cause.
	Err error
}

// Error implements error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.String())
	if e.Row > 0 {
		sb.WriteString(fmt.Sprintf(" (row %d)", e.Row))
	}
	if e.Endpoint != "" {
		sb.WriteString(" at ")
		sb.WriteString(e.Endpoint)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, endpoint string, err error) *Error {
	return &Error{Kind: kind, Endpoint: endpoint, Err: err}
}

// WithRow adds a row index to an error. If the error is not an Error, it
// becomes an Error of Unknown kind.
func WithRow(err error, row int) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		res := *e
		res.Row = row
		return &res
	}
	return &Error{Kind: Unknown, Row: row, Err: err}
}

// KindOf returns the kind of an error, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// IsKind checks if an error in the chain is of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
