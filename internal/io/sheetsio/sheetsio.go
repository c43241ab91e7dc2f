package sheetsio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
	"github.com/sji-bdl/bdlimport/internal/ent/source"
	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type sheetsio struct {
	cfg      config.Config
	in       io.Reader
	out      io.Writer
	client   *http.Client
	endpoint string
	enc      gnfmt.Encoder
}

// Option changes settings of the Google Sheets reader.
type Option func(*sheetsio)

// OptHTTPClient sets an already authorized HTTP client. OAuth files are
// not used in this case.
func OptHTTPClient(c *http.Client) Option {
	return func(s *sheetsio) {
		s.client = c
	}
}

// OptEndpoint overrides the URL of Google Sheets API.
func OptEndpoint(u string) Option {
	return func(s *sheetsio) {
		s.endpoint = u
	}
}

// OptPrompt sets where the authorization URL is printed and where the
// authorization code is read from.
func OptPrompt(in io.Reader, out io.Writer) Option {
	return func(s *sheetsio) {
		s.in = in
		s.out = out
	}
}

// New creates a reader of the responses sheet in Google Sheets. The
// access is read-only.
func New(cfg config.Config, opts ...Option) source.Reader {
	res := sheetsio{
		cfg: cfg,
		in:  os.Stdin,
		out: os.Stderr,
		enc: gnfmt.GNjson{Pretty: true},
	}
	for _, opt := range opts {
		opt(&res)
	}
	return &res
}

// Rows returns all rows of the configured range, header included. If the
// saved Google token is revoked, the user is asked for consent again.
func (s *sheetsio) Rows(ctx context.Context) ([]report.RawRow, error) {
	endpoint := "sheets:" + s.cfg.SheetID + "/" + s.cfg.SheetRange
	client, err := s.httpClient(ctx, false)
	if err != nil {
		return nil, bdlerr.New(bdlerr.SourceFetchFailure, endpoint, err)
	}

	slog.Info("Reading responses from Google Sheets",
		"sheet", s.cfg.SheetID, "range", s.cfg.SheetRange)
	values, err := s.values(ctx, client)
	if err != nil && s.client == nil && isAuthError(err) {
		slog.Warn("Google token is not accepted, starting authorization",
			"error", err)
		if client, err = s.httpClient(ctx, true); err == nil {
			values, err = s.values(ctx, client)
		}
	}
	if err != nil {
		return nil, bdlerr.New(bdlerr.SourceFetchFailure, endpoint, err)
	}

	res := toRows(values)
	if len(res) == 0 {
		slog.Warn("No data found", "sheet", s.cfg.SheetID)
	}
	return res, nil
}

func (s *sheetsio) values(ctx context.Context, client *http.Client) ([][]any, error) {
	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint))
	}
	srv, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create sheets service: %w", err)
	}

	resp, err := srv.Spreadsheets.Values.
		Get(s.cfg.SheetID, s.cfg.SheetRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// isAuthError is true when the token cannot be refreshed or Google
// rejects it.
func isAuthError(err error) bool {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return true
	}
	var ge *googleapi.Error
	return errors.As(err, &ge) && ge.Code == http.StatusUnauthorized
}

func toRows(values [][]any) []report.RawRow {
	res := make([]report.RawRow, len(values))
	for i, vals := range values {
		row := make(report.RawRow, len(vals))
		for j, v := range vals {
			if v == nil {
				continue
			}
			row[j] = fmt.Sprint(v)
		}
		res[i] = row
	}
	return res
}

// httpClient creates a client authorized by the saved token, or by a new
// one if there is no saved token or reauth is true. Refreshed tokens are
// saved.
func (s *sheetsio) httpClient(ctx context.Context, reauth bool) (*http.Client, error) {
	if s.client != nil {
		return s.client, nil
	}

	bs, err := os.ReadFile(s.cfg.SheetsCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read Google credentials: %w", err)
	}
	oCfg, err := google.ConfigFromJSON(bs, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("cannot parse Google credentials: %w", err)
	}

	var tok *oauth2.Token
	if !reauth {
		tok, err = s.loadToken()
	}
	if reauth || err != nil {
		slog.Info("No valid Google token, starting authorization")
		if tok, err = s.authorize(ctx, oCfg); err != nil {
			return nil, err
		}
		s.storeToken(tok)
	}

	ts := &savingTokenSource{
		src:   oCfg.TokenSource(ctx, tok),
		last:  tok.AccessToken,
		store: s.storeToken,
	}
	return oauth2.NewClient(ctx, ts), nil
}

// savingTokenSource calls store every time the access token changes.
type savingTokenSource struct {
	src   oauth2.TokenSource
	store func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (t *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := t.src.Token()
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok.AccessToken != t.last {
		t.last = tok.AccessToken
		t.store(tok)
	}
	return tok, nil
}

// authorize asks the user to open the consent page and to paste the
// authorization code back.
func (s *sheetsio) authorize(
	ctx context.Context,
	oCfg *oauth2.Config,
) (*oauth2.Token, error) {
	u := oCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(s.out,
		"Open the following link in your browser and paste the "+
			"authorization code:\n%v\n", u)

	var code string
	if _, err := fmt.Fscan(s.in, &code); err != nil {
		return nil, fmt.Errorf("cannot read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("authorization code is empty")
	}

	tok, err := oCfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("cannot exchange authorization code: %w", err)
	}
	return tok, nil
}

func (s *sheetsio) loadToken() (*oauth2.Token, error) {
	bs, err := os.ReadFile(s.cfg.SheetsTokenFile)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err = s.enc.Decode(bs, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (s *sheetsio) storeToken(tok *oauth2.Token) {
	if err := s.saveToken(tok); err != nil {
		slog.Warn("Cannot save Google token",
			"path", s.cfg.SheetsTokenFile, "error", err)
	}
}

func (s *sheetsio) saveToken(tok *oauth2.Token) error {
	err := gnsys.MakeDir(filepath.Dir(s.cfg.SheetsTokenFile))
	if err != nil {
		return err
	}
	bs, err := s.enc.Encode(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(s.cfg.SheetsTokenFile, bs, 0600)
}
