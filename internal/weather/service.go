package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
)

const (
	DefaultProviderName = "Met Office"
	DefaultSearchLimit  = 5
)

var (
	errNoFeatures    = errors.New("forecast response has no features")
	errNoGeometry    = errors.New("forecast response has no feature geometry")
	errNoCoordinates = errors.New("forecast response has no geometry coordinates")
	errNoProperties  = errors.New("forecast response has no feature properties")
	errNoTimeSeries  = errors.New("forecast response has no timeSeries")

	// ErrNoSnapshotStore is returned by snapshot operations on a Service built without a store.
	ErrNoSnapshotStore = errors.New("snapshot store not configured")
)

// Service fetches, normalizes and merges Met Office forecasts for the host.
type Service struct {
	source      ForecastSource
	keys        KeyStore
	store       SnapshotStore
	provider    string
	searchLimit int
	now         func() time.Time
	logger      *zap.Logger
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithProviderName sets the attribution string attached to every forecast.
func WithProviderName(name string) ServiceOption {
	return func(s *Service) {
		if name != "" {
			s.provider = name
		}
	}
}

// WithSearchLimit sets the default result cap for FindLocations.
func WithSearchLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.searchLimit = limit
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithSnapshotStore enables FetchAndStore and GetLatest.
func WithSnapshotStore(store SnapshotStore) ServiceOption {
	return func(s *Service) { s.store = store }
}

// NewService creates a new Service.
func NewService(source ForecastSource, keys KeyStore, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		source:      source,
		keys:        keys,
		provider:    DefaultProviderName,
		searchLimit: DefaultSearchLimit,
		now:         time.Now,
		logger:      logger.With(zap.String("component", "weather-service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetWeatherData returns the merged forecast for a bare coordinate.
// ok is false when no usable data could be produced, which is distinct from an
// empty but valid forecast.
func (s *Service) GetWeatherData(ctx context.Context, lat, lon float64) (forecasts []Forecast, ok bool, err error) {
	return s.GetLocationWeatherData(ctx, Location{Lat: lat, Lon: lon})
}

// GetLocationWeatherData returns the merged forecast for a named location.
func (s *Service) GetLocationWeatherData(ctx context.Context, loc Location) ([]Forecast, bool, error) {
	logger := s.logger.With(zap.String("request_id", uuid.NewString()), zap.String("location", loc.Key()))

	type result struct {
		forecasts []Forecast
		ok        bool
		err       error
	}

	var (
		wg          sync.WaitGroup
		hourly      result
		threeHourly result
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		hourly.forecasts, hourly.ok, hourly.err = s.fetch(ctx, logger, loc, metoffice.Hourly)
	}()
	go func() {
		defer wg.Done()
		threeHourly.forecasts, threeHourly.ok, threeHourly.err = s.fetch(ctx, logger, loc, metoffice.ThreeHourly)
	}()
	wg.Wait()

	if err := errors.Join(hourly.err, threeHourly.err); err != nil {
		return nil, false, err
	}

	var (
		merged []Forecast
		ok     bool
	)
	switch {
	case len(hourly.forecasts) == 0:
		logger.Warn("no hourly forecast available")
		merged, ok = threeHourly.forecasts, threeHourly.ok
	case len(threeHourly.forecasts) == 0:
		logger.Warn("no 3-hourly forecast available")
		merged, ok = hourly.forecasts, hourly.ok
	default:
		merged, ok = Merge(hourly.forecasts, threeHourly.forecasts), true
	}
	if !ok {
		return nil, false, nil
	}

	minTimestamp := s.now().Add(-time.Hour).UnixMilli()
	out := make([]Forecast, 0, len(merged))
	for _, f := range merged {
		if f.Timestamp >= minTimestamp {
			out = append(out, f)
		}
	}
	logger.Debug("entries returned in total", zap.Int("count", len(out)))
	return out, true, nil
}

// fetch retrieves and normalizes one granularity. Structural gaps in the response are
// logged and reported as ok=false; transport and authentication failures are returned.
func (s *Service) fetch(ctx context.Context, logger *zap.Logger, loc Location, g metoffice.Granularity) ([]Forecast, bool, error) {
	logger = logger.With(zap.Stringer("granularity", g))
	logger.Info("fetching forecast", zap.Float64("lat", loc.Lat), zap.Float64("lon", loc.Lon))

	resp, err := s.source.Forecast(ctx, loc.Lat, loc.Lon, g, "")
	if err != nil {
		return nil, false, err
	}

	series, err := extractSeries(resp)
	if err != nil {
		logger.Error("unusable forecast response", zap.Error(err))
		return nil, false, nil
	}

	name := loc.Name
	if name == "" {
		name = series.locationName
	}

	forecasts := make([]Forecast, 0, len(series.entries))
	for _, entry := range series.entries {
		f, ok := Normalize(entry, name, s.provider, series.geometry)
		if !ok {
			logger.Debug("skipping forecast entry", zap.Stringp("time", entry.Time))
			continue
		}
		forecasts = append(forecasts, f)
	}
	logger.Debug("entries fetched", zap.Int("count", len(forecasts)))
	return forecasts, true, nil
}

type timeSeries struct {
	geometry     *metoffice.Geometry
	locationName string
	entries      []metoffice.TimeSeries
}

// extractSeries walks features -> geometry -> properties -> timeSeries, stopping at
// the first missing level.
func extractSeries(resp *metoffice.ForecastResponse) (timeSeries, error) {
	if resp == nil || len(resp.Features) == 0 {
		return timeSeries{}, errNoFeatures
	}
	feature := resp.Features[0]
	if feature.Geometry == nil {
		return timeSeries{}, errNoGeometry
	}
	if feature.Geometry.Coordinates == nil {
		return timeSeries{}, errNoCoordinates
	}
	if feature.Properties == nil {
		return timeSeries{}, errNoProperties
	}
	if len(feature.Properties.TimeSeries) == 0 {
		return timeSeries{}, errNoTimeSeries
	}

	var name string
	if l := feature.Properties.Location; l != nil && l.Name != nil {
		name = *l.Name
	}
	return timeSeries{
		geometry:     feature.Geometry,
		locationName: name,
		entries:      feature.Properties.TimeSeries,
	}, nil
}

// FindLocations searches for named locations. limit <= 0 uses the configured default.
// Candidates without a name or a full coordinate pair are dropped.
func (s *Service) FindLocations(ctx context.Context, query string, limit int) ([]GeoResult, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}
	geo, err := s.source.SearchLocations(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	results := make([]GeoResult, 0, len(geo))
	for _, g := range geo {
		if g.Name == nil || len(g.LatLong) < 2 {
			continue
		}
		r := GeoResult{
			Name:   *g.Name,
			LatLon: [2]float64{g.LatLong[0], g.LatLong[1]},
		}
		if g.Area != nil && *g.Area != "" {
			r.Area = *g.Area
			r.Name = fmt.Sprintf("%s, %s", *g.Name, *g.Area)
		}
		if g.Country != nil {
			r.Country = *g.Country
		}
		results = append(results, r)
	}
	return results, nil
}

// State reports StateSetupRequired until an API key is stored.
func (s *Service) State(ctx context.Context) (State, error) {
	key, err := s.keys.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("read stored API key: %w", err)
	}
	if key == "" {
		return StateSetupRequired, nil
	}
	return StateReady, nil
}

// SaveAPIKey stores key after it passes the credential self-test. It reports whether
// the key was accepted.
func (s *Service) SaveAPIKey(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, metoffice.ErrNoAPIKey
	}
	ok, err := s.source.TestAPIKey(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := s.keys.SetAPIKey(ctx, key); err != nil {
		return false, fmt.Errorf("store API key: %w", err)
	}
	return true, nil
}

// FetchAndStore refreshes the latest snapshot for loc. A fetch without usable data
// keeps the previous snapshot.
func (s *Service) FetchAndStore(ctx context.Context, loc Location) error {
	if s.store == nil {
		return ErrNoSnapshotStore
	}
	forecasts, ok, err := s.GetLocationWeatherData(ctx, loc)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("no usable forecast; keeping last good snapshot if any", zap.String("location", loc.Key()))
		return nil
	}
	s.store.SaveSnapshot(loc, Snapshot{
		Location:  loc,
		FetchedAt: s.now().UnixMilli(),
		Forecasts: forecasts,
	})
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(loc Location) (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, ErrNoSnapshotStore
	}
	return s.store.GetLatest(loc)
}
