package metoffice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/i474232898/metoffice-weather/internal/transport"
)

const (
	DefaultForecastHost = "data.hub.api.metoffice.gov.uk"
	DefaultSearchHost   = "www.metoffice.gov.uk"

	// Reference coordinate used to validate a candidate API key.
	testLat = 51.5
	testLon = 0.0
)

// Granularity selects the forecast sampling interval.
type Granularity int

const (
	Hourly Granularity = iota
	ThreeHourly
	Daily
)

func (g Granularity) endpoint() string {
	switch g {
	case ThreeHourly:
		return "three-hourly"
	case Daily:
		return "daily"
	default:
		return "hourly"
	}
}

func (g Granularity) String() string {
	return g.endpoint()
}

// KeySource supplies the stored API key. An empty key with a nil error means none is stored.
type KeySource interface {
	APIKey(ctx context.Context) (string, error)
}

// Client talks to the Met Office site-specific forecast and location-search endpoints.
type Client struct {
	transport    transport.Doer
	search       transport.Doer
	keys         KeySource
	forecastHost string
	searchHost   string
	logger       *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHosts overrides the upstream hosts, mainly for tests.
func WithHosts(forecastHost, searchHost string) Option {
	return func(c *Client) {
		if forecastHost != "" {
			c.forecastHost = forecastHost
		}
		if searchHost != "" {
			c.searchHost = searchHost
		}
	}
}

// WithSearchTransport sends location searches through t. Search is not billed against
// the forecast quota, so it usually gets a transport without the daily limiter.
func WithSearchTransport(t transport.Doer) Option {
	return func(c *Client) {
		if t != nil {
			c.search = t
		}
	}
}

// NewClient creates a Client. Location search shares t unless WithSearchTransport is given.
func NewClient(t transport.Doer, keys KeySource, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		transport:    t,
		search:       t,
		keys:         keys,
		forecastHost: DefaultForecastHost,
		searchHost:   DefaultSearchHost,
		logger:       logger.With(zap.String("component", "metoffice-client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forecast fetches a point forecast. An empty apiKey falls back to the stored key.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, g Granularity, apiKey string) (*ForecastResponse, error) {
	key, err := c.resolveKey(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("apikey", key)
	req := transport.Request{
		Host: c.forecastHost,
		Path: []string{"sitespecific", "v0", "point", g.endpoint()},
		Query: url.Values{
			"dataSource":               {"BD1"},
			"excludeParameterMetadata": {"true"},
			"includeLocationName":      {"true"},
			"latitude":                 {formatCoord(lat)},
			"longitude":                {formatCoord(lon)},
		},
		Header: header,
	}

	resp, err := c.transport.Get(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s forecast request: %w", g, err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out ForecastResponse
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s forecast: %w", g, err)
	}
	return &out, nil
}

// SearchLocations queries the location-search endpoint. limit <= 0 leaves the result count uncapped.
func (c *Client) SearchLocations(ctx context.Context, query string, limit int) ([]Geo, error) {
	q := url.Values{
		"searchTerm": {query},
		"filter":     {"exclude-marine-offshore"},
	}
	if limit > 0 {
		q.Set("max", strconv.Itoa(limit))
	}

	resp, err := c.search.Get(ctx, transport.Request{
		Host:  c.searchHost,
		Path:  []string{"plain-rest-services", "location-search"},
		Query: q,
	})
	if err != nil {
		return nil, fmt.Errorf("location search request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var out []Geo
	if err := resp.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode location search: %w", err)
	}
	return out, nil
}

// TestAPIKey reports whether apiKey is accepted by the forecast endpoint. An empty key and
// authentication failures yield false; any other failure is returned.
func (c *Client) TestAPIKey(ctx context.Context, apiKey string) (bool, error) {
	if apiKey == "" {
		return false, nil
	}
	_, err := c.Forecast(ctx, testLat, testLon, Hourly, apiKey)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrUnauthorized):
		c.logger.Error("invalid API key", zap.Error(err))
		return false, nil
	default:
		return false, err
	}
}

func (c *Client) resolveKey(ctx context.Context, apiKey string) (string, error) {
	if apiKey != "" {
		return apiKey, nil
	}
	if c.keys == nil {
		return "", ErrNoAPIKey
	}
	key, err := c.keys.APIKey(ctx)
	if err != nil {
		return "", fmt.Errorf("read stored API key: %w", err)
	}
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

func checkStatus(resp *transport.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%w; body %s", ErrUnauthorized, resp.Body)
	default:
		return &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
