package apiio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gnames/gnfmt"
	"github.com/sji-bdl/bdlimport/internal/ent/bdl"
	"github.com/sji-bdl/bdlimport/internal/ent/session"
	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
)

const (
	loginPath   = "/api/admins/login"
	mePath      = "/users/me"
	searchPath  = "/api/admins/reports/search"
	reportsPath = "/api/admins/reports"
	newPath     = "/api/reports/new"

	// errBodyLen limits the part of an error response that goes to logs.
	errBodyLen = 512
)

type apiio struct {
	cfg     config.Config
	baseURL string
	client  *http.Client
	enc     gnfmt.Encoder
}

type login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// New creates a client of the reporting API.
func New(cfg config.Config) bdl.Client {
	res := apiio{
		cfg:     cfg,
		baseURL: cfg.BaseURL(),
		client:  &http.Client{Timeout: cfg.Timeout},
		enc:     gnfmt.GNjson{},
	}
	return &res
}

// Login posts user and password and takes the token from the response
// header.
func (a *apiio) Login(
	ctx context.Context,
	user, password string,
) (session.Credential, error) {
	var res session.Credential
	u := a.baseURL + loginPath
	body, err := a.enc.Encode(login{Email: user, Password: password})
	if err != nil {
		return res, bdlerr.New(bdlerr.AuthenticationFailure, u, err)
	}

	slog.Debug("Logging in", "url", u, "user", user)
	resp, err := a.do(ctx, http.MethodPost, u, body, nil)
	if err != nil {
		return res, bdlerr.New(bdlerr.AuthenticationFailure, u, err)
	}

	token := resp.header.Get(a.cfg.TokenHeader)
	if token == "" {
		err = fmt.Errorf("response has no %s header", a.cfg.TokenHeader)
		return res, bdlerr.New(bdlerr.AuthenticationFailure, u, err)
	}
	return session.NewCredential(a.cfg.TokenHeader, token), nil
}

// Me checks if the API accepts the credential.
func (a *apiio) Me(ctx context.Context, cred session.Credential) error {
	u := a.baseURL + mePath
	slog.Debug("Verifying session", "url", u)
	if _, err := a.do(ctx, http.MethodGet, u, nil, cred.Headers); err != nil {
		return bdlerr.New(bdlerr.AuthenticationFailure, u, err)
	}
	return nil
}

// Search finds reports that match the key.
func (a *apiio) Search(
	ctx context.Context,
	key report.SearchKey,
	cred session.Credential,
) ([]report.Summary, error) {
	u := a.searchURL(key)
	slog.Debug("Searching reports", "url", u)
	resp, err := a.do(ctx, http.MethodGet, u, nil, cred.Headers)
	if err != nil {
		return nil, bdlerr.New(bdlerr.SearchFailure, u, err)
	}

	var res []report.Summary
	if err = a.enc.Decode(resp.body, &res); err != nil {
		err = fmt.Errorf("cannot decode search results: %w", err)
		return nil, bdlerr.New(bdlerr.SearchFailure, u, err)
	}
	return res, nil
}

// Exists checks if there is at least one report matching the key.
func (a *apiio) Exists(
	ctx context.Context,
	key report.SearchKey,
	cred session.Credential,
) (bool, error) {
	res, err := a.Search(ctx, key, cred)
	if err != nil {
		return false, err
	}
	return len(res) > 0, nil
}

// Submit creates a report. The endpoint is public, no credential is
// sent.
func (a *apiio) Submit(ctx context.Context, r report.Report) error {
	u := a.baseURL + newPath
	body, err := a.enc.Encode(r)
	if err != nil {
		return bdlerr.New(bdlerr.SubmissionFailure, u, err)
	}

	slog.Debug("Submitting report", "url", u, "row", r.SourceRow)
	if _, err = a.do(ctx, http.MethodPost, u, body, nil); err != nil {
		return bdlerr.New(bdlerr.SubmissionFailure, u, err)
	}
	return nil
}

// Reports returns all reports from the API.
func (a *apiio) Reports(
	ctx context.Context,
	cred session.Credential,
) ([]report.Summary, error) {
	u := a.baseURL + reportsPath
	resp, err := a.do(ctx, http.MethodGet, u, nil, cred.Headers)
	if err != nil {
		return nil, bdlerr.New(bdlerr.SearchFailure, u, err)
	}
	var res []report.Summary
	if err = a.enc.Decode(resp.body, &res); err != nil {
		err = fmt.Errorf("cannot decode reports: %w", err)
		return nil, bdlerr.New(bdlerr.SearchFailure, u, err)
	}
	return res, nil
}

// searchURL adds only non-empty fields of the key to the query.
func (a *apiio) searchURL(key report.SearchKey) string {
	q := url.Values{}
	if key.Date != "" {
		q.Set("date", key.Date)
	}
	if key.City != "" {
		q.Set("city", key.City)
	}
	if key.Name != "" {
		q.Set("name", key.Name)
	}
	u := a.baseURL + searchPath
	if len(q) == 0 {
		return u
	}
	return u + "?" + q.Encode()
}

type response struct {
	header http.Header
	body   []byte
}

// do sends a request and reads the whole response. Responses with status
// outside of 2xx become errors.
func (a *apiio) do(
	ctx context.Context,
	method, u string,
	body []byte,
	headers map[string]string,
) (response, error) {
	var res response
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return res, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return res, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	res.header = resp.Header
	res.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := res.body
		if len(msg) > errBodyLen {
			msg = msg[:errBodyLen]
		}
		return res, &StatusError{Code: resp.StatusCode, Body: string(msg)}
	}
	return res, nil
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.Code, e.Body)
}

// StatusCode returns HTTP status of an error, or 0 if the error did not
// come from an API response.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
