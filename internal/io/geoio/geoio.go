package geoio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gnames/gnfmt"
	"github.com/golang/geo/s2"
	"github.com/sji-bdl/bdlimport/internal/ent/geo"
	"github.com/sji-bdl/bdlimport/internal/ent/kv"
	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/time/rate"
)

// place is a cached result of geocoding. Cities that were not found are
// cached too, so they are not requested again.
type place struct {
	Found bool
	Lat   float64
	Lng   float64
}

// nominatimPlace is an element of Nominatim search results.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type geoio struct {
	cfg     config.Config
	kv      kv.KeyVal
	client  *http.Client
	limiter *rate.Limiter
	gob     gnfmt.Encoder
	json    gnfmt.Encoder

	mu    sync.Mutex
	cache map[string]place

	// failed keeps errors of the current run, they are not saved to the
	// key-value store.
	failed map[string]error
}

// Option changes settings of the geocoder.
type Option func(*geoio)

// OptInterval sets the minimal time between requests to the geocoder.
// Public Nominatim allows one request per second.
func OptInterval(d time.Duration) Option {
	return func(g *geoio) {
		g.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// New creates a Nominatim geocoder. Results are saved to the key-value
// store, it can be nil.
func New(cfg config.Config, store kv.KeyVal, opts ...Option) (geo.Locator, error) {
	res := geoio{
		cfg:     cfg,
		kv:      store,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		gob:     gnfmt.GNgob{},
		json:    gnfmt.GNjson{},
		cache:   make(map[string]place),
		failed:  make(map[string]error),
	}
	for _, opt := range opts {
		opt(&res)
	}
	if res.kv != nil {
		if err := res.kv.Open(); err != nil {
			slog.Error("Cannot open geocoding cache", "error", err)
			return nil, err
		}
	}
	return &res, nil
}

// Locate returns a point for a city. It returns nil if the city is blank
// or unknown to the geocoder.
func (g *geoio) Locate(ctx context.Context, city string) (*report.Point, error) {
	city = strings.TrimSpace(city)
	if city == "" || city == report.NA {
		return nil, nil
	}
	key := cacheKey(city)

	if err := g.failure(key); err != nil {
		return nil, err
	}

	p, ok := g.cached(key)
	if !ok {
		var err error
		p, err = g.request(ctx, city)
		if err != nil {
			if ctx.Err() == nil {
				g.fail(key, err)
			}
			return nil, err
		}
		g.store(key, p)
	}

	if !p.Found {
		return nil, nil
	}
	return report.NewPoint(p.Lat, p.Lng), nil
}

// Warm geocodes distinct cities concurrently. Failures are logged and do
// not stop the warm-up.
func (g *geoio) Warm(ctx context.Context, cities []string) error {
	seen := make(map[string]struct{})
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.JobsNum)
	for _, city := range cities {
		city = strings.TrimSpace(city)
		if city == "" || city == report.NA {
			continue
		}
		key := cacheKey(city)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		eg.Go(func() error {
			if _, err := g.Locate(ctx, city); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				slog.Warn("Cannot geocode city", "city", city, "error", err)
			}
			return nil
		})
	}
	return eg.Wait()
}

// Close closes the key-value store.
func (g *geoio) Close() error {
	if g.kv == nil {
		return nil
	}
	return g.kv.Close()
}

func (g *geoio) failure(key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failed[key]
}

func (g *geoio) fail(key string, err error) {
	g.mu.Lock()
	g.failed[key] = err
	g.mu.Unlock()
}

func (g *geoio) cached(key string) (place, bool) {
	g.mu.Lock()
	p, ok := g.cache[key]
	g.mu.Unlock()
	if ok || g.kv == nil {
		return p, ok
	}

	bs, err := g.kv.GetValue([]byte(key))
	if err != nil {
		slog.Warn("Cannot read geocoding cache", "key", key, "error", err)
		return p, false
	}
	if bs == nil {
		return p, false
	}
	if err = g.gob.Decode(bs, &p); err != nil {
		slog.Warn("Cannot decode cached place", "key", key, "error", err)
		return p, false
	}

	g.mu.Lock()
	g.cache[key] = p
	g.mu.Unlock()
	return p, true
}

func (g *geoio) store(key string, p place) {
	g.mu.Lock()
	g.cache[key] = p
	g.mu.Unlock()
	if g.kv == nil {
		return
	}

	bs, err := g.gob.Encode(p)
	if err == nil {
		err = g.kv.SetValue([]byte(key), bs)
	}
	if err != nil {
		slog.Warn("Cannot save place to geocoding cache", "key", key, "error", err)
	}
}

func (g *geoio) request(ctx context.Context, city string) (place, error) {
	var res place
	u := g.searchURL(city)
	if err := g.limiter.Wait(ctx); err != nil {
		return res, bdlerr.New(bdlerr.GeocodeFailure, u, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return res, bdlerr.New(bdlerr.GeocodeFailure, u, err)
	}
	req.Header.Set("User-Agent", g.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	slog.Debug("Geocoding city", "city", city, "url", u)
	resp, err := g.client.Do(req)
	if err != nil {
		return res, bdlerr.New(bdlerr.GeocodeFailure, u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, bdlerr.New(bdlerr.GeocodeFailure, u, err)
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("geocoder returned status %d", resp.StatusCode)
		return res, bdlerr.New(bdlerr.GeocodeFailure, u, err)
	}

	var places []nominatimPlace
	if err = g.json.Decode(body, &places); err != nil {
		return res, bdlerr.New(bdlerr.GeocodeFailure, u, err)
	}
	if len(places) == 0 {
		slog.Info("City is not found by geocoder", "city", city)
		return res, nil
	}
	return toPlace(places[0]), nil
}

func (g *geoio) searchURL(city string) string {
	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "1")
	if g.cfg.GeoCountries != "" {
		q.Set("countrycodes", g.cfg.GeoCountries)
	}
	return strings.TrimRight(g.cfg.GeocoderURL, "/") + "/search?" + q.Encode()
}

// toPlace converts Nominatim coordinates. Coordinates outside of valid
// ranges are treated as not found.
func toPlace(np nominatimPlace) place {
	var res place
	lat, err := strconv.ParseFloat(np.Lat, 64)
	if err != nil {
		return res
	}
	lng, err := strconv.ParseFloat(np.Lon, 64)
	if err != nil {
		return res
	}
	if !s2.LatLngFromDegrees(lat, lng).IsValid() {
		return res
	}
	return place{Found: true, Lat: lat, Lng: lng}
}

// cacheKey makes different spellings of a city share a cache entry.
func cacheKey(city string) string {
	return cases.Fold().String(strings.Join(strings.Fields(city), " "))
}
