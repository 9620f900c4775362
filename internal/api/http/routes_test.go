package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/metoffice-weather/internal/metoffice"
	"github.com/i474232898/metoffice-weather/internal/store"
	"github.com/i474232898/metoffice-weather/internal/transport"
	"github.com/i474232898/metoffice-weather/internal/weather"
)

type stubSource struct {
	forecast *metoffice.ForecastResponse
	err      error
	geo      []metoffice.Geo
	validKey string
}

func (s *stubSource) Forecast(context.Context, float64, float64, metoffice.Granularity, string) (*metoffice.ForecastResponse, error) {
	return s.forecast, s.err
}

func (s *stubSource) SearchLocations(context.Context, string, int) ([]metoffice.Geo, error) {
	return s.geo, s.err
}

func (s *stubSource) TestAPIKey(_ context.Context, key string) (bool, error) {
	return key == s.validKey, nil
}

type stubKeys struct{ key string }

func (k *stubKeys) APIKey(context.Context) (string, error) { return k.key, nil }
func (k *stubKeys) SetAPIKey(_ context.Context, key string) error {
	k.key = key
	return nil
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func oneEntry() *metoffice.ForecastResponse {
	ts := "2024-03-01T13:00Z"
	name := "Exeter"
	temp := 9.5
	return &metoffice.ForecastResponse{Features: []metoffice.Feature{{
		Geometry: &metoffice.Geometry{Coordinates: []float64{-3.53, 50.72, 30}},
		Properties: &metoffice.Properties{
			Location:   &metoffice.Location{Name: &name},
			TimeSeries: []metoffice.TimeSeries{{Time: &ts, ScreenTemperature: &temp}},
		},
	}}}
}

func newTestApp(src *stubSource, keys *stubKeys) (*fiber.App, *weather.Service) {
	svc := weather.NewService(src, keys, zap.NewNop(),
		weather.WithClock(func() time.Time { return fixedNow }),
		weather.WithSnapshotStore(store.NewMemoryStore(0)),
	)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc)
	return app, svc
}

func do(t *testing.T, app *fiber.App, method, target string, body io.Reader) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestWeatherEndpoint(t *testing.T) {
	app, _ := newTestApp(&stubSource{forecast: oneEntry()}, &stubKeys{key: "k"})

	resp := do(t, app, http.MethodGet, "/api/v1/weather?lat=50.72&lon=-3.53&name=Home", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []weather.Forecast
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	// hourly and three-hourly return the same entry; merge keeps only the hourly one
	require.Len(t, got, 1)
	assert.Equal(t, "Home", got[0].Location)
	assert.Equal(t, weather.Temperature(9.5), got[0].Temperature)
}

func TestWeatherEndpoint_Validation(t *testing.T) {
	app, _ := newTestApp(&stubSource{forecast: oneEntry()}, &stubKeys{})

	for _, target := range []string{
		"/api/v1/weather",
		"/api/v1/weather?lat=50",
		"/api/v1/weather?lat=abc&lon=1",
		"/api/v1/weather?lat=91&lon=1",
		"/api/v1/weather?lat=1&lon=-181",
	} {
		resp := do(t, app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, target)
	}
}

func TestWeatherEndpoint_NoData(t *testing.T) {
	app, _ := newTestApp(&stubSource{forecast: &metoffice.ForecastResponse{}}, &stubKeys{})

	resp := do(t, app, http.MethodGet, "/api/v1/weather?lat=0&lon=0", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestWeatherEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{metoffice.ErrNoAPIKey, http.StatusBadRequest},
		{fmt.Errorf("%w: nope", metoffice.ErrUnauthorized), http.StatusUnauthorized},
		{&metoffice.APIError{StatusCode: 503, Body: "busy"}, http.StatusBadGateway},
		{fmt.Errorf("forecast: %w", transport.ErrQuotaExhausted), http.StatusServiceUnavailable},
		{fmt.Errorf("dial tcp: timeout"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app, _ := newTestApp(&stubSource{err: tt.err}, &stubKeys{})
			resp := do(t, app, http.MethodGet, "/api/v1/weather?lat=1&lon=2", nil)
			assert.Equal(t, tt.want, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, true, body["error"])
		})
	}
}

func TestLocationsEndpoint(t *testing.T) {
	name, area := "Exeter", "Devon"
	app, _ := newTestApp(&stubSource{geo: []metoffice.Geo{
		{Name: &name, Area: &area, LatLong: []float64{50.72, -3.53}},
		{Name: &name, LatLong: []float64{51.5}},
	}}, &stubKeys{})

	resp := do(t, app, http.MethodGet, "/api/v1/locations?q=exe&limit=3", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []weather.GeoResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, "Exeter, Devon", got[0].Name)

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/api/v1/locations", nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/api/v1/locations?q=x&limit=many", nil).StatusCode)
}

func TestStateAndAPIKeyEndpoints(t *testing.T) {
	keys := &stubKeys{}
	app, _ := newTestApp(&stubSource{validKey: "good"}, keys)

	state := func() string {
		resp := do(t, app, http.MethodGet, "/api/v1/state", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return body["state"]
	}
	assert.Equal(t, string(weather.StateSetupRequired), state())

	resp := do(t, app, http.MethodPut, "/api/v1/apikey", strings.NewReader(`{"apiKey":"bad"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPut, "/api/v1/apikey", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, app, http.MethodPut, "/api/v1/apikey", strings.NewReader(`{"apiKey":"good"}`))
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "good", keys.key)
	assert.Equal(t, string(weather.StateReady), state())
}

func TestLatestEndpoint(t *testing.T) {
	app, svc := newTestApp(&stubSource{forecast: oneEntry()}, &stubKeys{})

	assert.Equal(t, http.StatusBadRequest, do(t, app, http.MethodGet, "/api/v1/weather/latest", nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, do(t, app, http.MethodGet, "/api/v1/weather/latest?name=Exeter", nil).StatusCode)

	require.NoError(t, svc.FetchAndStore(context.Background(), weather.Location{Name: "Exeter", Lat: 50.72, Lon: -3.53}))

	resp := do(t, app, http.MethodGet, "/api/v1/weather/latest?name=Exeter", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var snap weather.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	assert.Equal(t, fixedNow.UnixMilli(), snap.FetchedAt)
	assert.Len(t, snap.Forecasts, 1)
}

type blockingSource struct{ stubSource }

func (blockingSource) Forecast(ctx context.Context, _, _ float64, _ metoffice.Granularity, _ string) (*metoffice.ForecastResponse, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRequestTimeout(t *testing.T) {
	svc := weather.NewService(&blockingSource{}, &stubKeys{}, zap.NewNop())
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(RequestTimeout(50 * time.Millisecond))
	RegisterRoutes(app, svc)

	start := time.Now()
	resp := do(t, app, http.MethodGet, "/api/v1/weather?lat=1&lon=2", nil)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}
