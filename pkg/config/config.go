package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
)

const (
	// DefaultSheetID is the "SJI BDL Results" spreadsheet.
	DefaultSheetID = "1TLQJW0WDX2CqZIpwRHr84o1_4M_weOyMpOI8BzRG7CE"

	// DefaultSheetRange is long enough to cover all responses. The API
	// returns only filled cells. Without a sheet name the first visible
	// sheet is used.
	DefaultSheetRange = "A1:AD10000"
)

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// CacheDir is a directory for the session file, Google token and
	// geocoding key-value store.
	CacheDir string

	// SessionFile keeps headers of an authenticated API session.
	SessionFile string

	// SheetsCredentialsFile is an OAuth client secret downloaded from
	// Google Cloud console.
	SheetsCredentialsFile string

	// SheetsTokenFile keeps the OAuth token for Google Sheets.
	SheetsTokenFile string

	// GeoCacheDir is a directory of a key-value store with geocoded
	// cities.
	GeoCacheDir string

	// APIServer is a host (and optional port) of the reporting API.
	APIServer string

	// APIUser is an email of the API admin.
	APIUser string

	// APIPassword is a password of the API admin.
	APIPassword string

	// Env is "production" or "development". Production uses https.
	Env string

	// TokenHeader is the response header with the session token after
	// login. The same header is sent with authenticated requests.
	TokenHeader string

	// SheetID is the ID of the Google spreadsheet with responses.
	SheetID string

	// SheetRange is A1 notation of the range to read.
	SheetRange string

	// SourceFile is a local .xlsx or .csv export of the responses. When
	// set, it is used instead of Google Sheets.
	SourceFile string

	// Timeout limits every HTTP call.
	Timeout time.Duration

	// Deadline limits the whole run, zero means no limit.
	Deadline time.Duration

	// WithGeocode enables conversion of cities to points.
	WithGeocode bool

	// GeocoderURL is the base URL of a Nominatim service.
	GeocoderURL string

	// GeoCountries limits geocoding to comma-separated ISO country codes.
	GeoCountries string

	// UserAgent is sent to the geocoder, Nominatim requires it.
	UserAgent string

	// JobsNum is a number of concurrent geocoding requests. When it is
	// more than 1, all cities are geocoded before reports are checked.
	JobsNum int

	// StartRow is the first sheet row to import. Row 0 is the header.
	StartRow int

	// Limit is the maximal number of rows to import, zero means no limit.
	Limit int

	// DryRun disables creation of reports.
	DryRun bool
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptCacheDir sets a directory for cached files. It also resets locations
// of the files that live there.
func OptCacheDir(d string) Option {
	return func(cfg *Config) {
		cfg.CacheDir = d
		cfg.SessionFile = filepath.Join(d, "nodesession.json")
		cfg.SheetsTokenFile = filepath.Join(d, "token.json")
		cfg.GeoCacheDir = filepath.Join(d, "geo")
	}
}

// OptSessionFile sets the path to the API session file.
func OptSessionFile(s string) Option {
	return func(cfg *Config) {
		cfg.SessionFile = s
	}
}

// OptSheetsCredentialsFile sets the path to Google OAuth client secret.
func OptSheetsCredentialsFile(s string) Option {
	return func(cfg *Config) {
		cfg.SheetsCredentialsFile = s
	}
}

// OptSheetsTokenFile sets the path to Google OAuth token.
func OptSheetsTokenFile(s string) Option {
	return func(cfg *Config) {
		cfg.SheetsTokenFile = s
	}
}

// OptAPIServer sets host of the reporting API.
func OptAPIServer(s string) Option {
	return func(cfg *Config) {
		cfg.APIServer = s
	}
}

// OptAPIUser sets API admin user.
func OptAPIUser(u string) Option {
	return func(cfg *Config) {
		cfg.APIUser = u
	}
}

// OptAPIPassword sets API admin password.
func OptAPIPassword(p string) Option {
	return func(cfg *Config) {
		cfg.APIPassword = p
	}
}

// OptEnv sets environment mode.
func OptEnv(e string) Option {
	return func(cfg *Config) {
		cfg.Env = e
	}
}

// OptTokenHeader sets the header that carries the session token.
func OptTokenHeader(h string) Option {
	return func(cfg *Config) {
		cfg.TokenHeader = h
	}
}

// OptSheetID sets Google spreadsheet ID.
func OptSheetID(s string) Option {
	return func(cfg *Config) {
		cfg.SheetID = s
	}
}

// OptSheetRange sets the range of cells to read.
func OptSheetRange(r string) Option {
	return func(cfg *Config) {
		cfg.SheetRange = r
	}
}

// OptSourceFile sets a local file with responses.
func OptSourceFile(f string) Option {
	return func(cfg *Config) {
		cfg.SourceFile = f
	}
}

// OptTimeout sets timeout of HTTP calls.
func OptTimeout(t time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = t
	}
}

// OptDeadline sets the limit for the whole run.
func OptDeadline(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.Deadline = d
	}
}

// OptWithGeocode enables or disables geocoding.
func OptWithGeocode(b bool) Option {
	return func(cfg *Config) {
		cfg.WithGeocode = b
	}
}

// OptGeocoderURL sets Nominatim URL.
func OptGeocoderURL(u string) Option {
	return func(cfg *Config) {
		cfg.GeocoderURL = u
	}
}

// OptGeoCountries sets country codes for geocoding.
func OptGeoCountries(c string) Option {
	return func(cfg *Config) {
		cfg.GeoCountries = c
	}
}

// OptJobsNum sets parallelism number for concurrent goroutines.
func OptJobsNum(j int) Option {
	return func(cfg *Config) {
		cfg.JobsNum = j
	}
}

// OptStartRow sets the first row to import.
func OptStartRow(r int) Option {
	return func(cfg *Config) {
		cfg.StartRow = r
	}
}

// OptLimit sets the maximal number of rows to import.
func OptLimit(l int) Option {
	return func(cfg *Config) {
		cfg.Limit = l
	}
}

// OptDryRun disables creation of reports.
func OptDryRun(b bool) Option {
	return func(cfg *Config) {
		cfg.DryRun = b
	}
}

// New creates Config with default values modified by options.
func New(opts ...Option) Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	cacheDir = filepath.Join(cacheDir, "bdlimport")

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		cfgDir = cacheDir
	}

	res := Config{
		SheetsCredentialsFile: filepath.Join(cfgDir, "bdlimport", "credentials.json"),
		APIServer:             "localhost",
		APIUser:               "sji-bdl",
		APIPassword:           "sji-bdl",
		Env:                   "development",
		TokenHeader:           "x-auth",
		SheetID:               DefaultSheetID,
		SheetRange:            DefaultSheetRange,
		Timeout:               30 * time.Second,
		WithGeocode:           true,
		GeocoderURL:           "https://nominatim.openstreetmap.org",
		GeoCountries:          "us",
		UserAgent:             "bdlimport (St. James Infirmary Bad Date List)",
		JobsNum:               1,
		StartRow:              1,
	}
	OptCacheDir(cacheDir)(&res)

	for _, opt := range opts {
		opt(&res)
	}

	res.CacheDir = expandHome(res.CacheDir)
	res.SessionFile = expandHome(res.SessionFile)
	res.SheetsCredentialsFile = expandHome(res.SheetsCredentialsFile)
	res.SheetsTokenFile = expandHome(res.SheetsTokenFile)
	res.GeoCacheDir = expandHome(res.GeoCacheDir)
	res.SourceFile = expandHome(res.SourceFile)
	if res.StartRow < 1 {
		res.StartRow = 1
	}
	if res.JobsNum < 1 {
		res.JobsNum = 1
	}
	return res
}

// Scheme returns "https" in production and "http" otherwise.
func (cfg Config) Scheme() string {
	if cfg.Env == "production" {
		return "https"
	}
	return "http"
}

// BaseURL returns the URL of the API without a trailing slash.
func (cfg Config) BaseURL() string {
	return cfg.Scheme() + "://" + strings.TrimRight(cfg.APIServer, "/")
}

// Validate checks that settings can be used for an import.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.APIServer == "" {
		errs = append(errs, errors.New("API server is empty"))
	}
	if cfg.TokenHeader == "" {
		errs = append(errs, errors.New("token header is empty"))
	}
	if cfg.SourceFile == "" && cfg.SheetID == "" {
		errs = append(errs, errors.New("neither sheet ID nor source file is set"))
	}
	if cfg.Timeout < 0 || cfg.Deadline < 0 {
		errs = append(errs, errors.New("timeouts cannot be negative"))
	}
	if cfg.Limit < 0 {
		errs = append(errs, errors.New("limit cannot be negative"))
	}
	if len(errs) > 0 {
		return bdlerr.New(bdlerr.ConfigFailure, "", errors.Join(errs...))
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~\\") {
		return path
	}
	home, err := homedir.Dir()
	if err != nil {
		slog.Warn("Cannot find home directory", "path", path, "error", err)
		return path
	}
	return filepath.Join(home, path[2:])
}
