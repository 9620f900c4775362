package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Request describes a GET against a host, built from path segments and query parameters.
type Request struct {
	Host   string
	Path   []string
	Query  url.Values
	Header http.Header
}

// URL renders the request target. Hosts without a scheme are reached over https.
func (r Request) URL() string {
	base := r.Host
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	segments := make([]string, 0, len(r.Path))
	for _, p := range r.Path {
		segments = append(segments, url.PathEscape(p))
	}
	u := strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}
	return u
}

// Response is the raw status and body of an upstream call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Decode unmarshals the JSON body into v. Unknown fields are ignored.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Doer is the transport contract the Met Office client depends on.
type Doer interface {
	Get(ctx context.Context, req Request) (*Response, error)
}

// DoerFunc adapts a function to the Doer interface.
type DoerFunc func(ctx context.Context, req Request) (*Response, error)

func (f DoerFunc) Get(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Config bundles the HTTP client and resilience settings.
type Config struct {
	Client *http.Client

	// RequestsPerDay caps outbound calls; zero disables the limiter.
	RequestsPerDay int
	Burst          int

	BreakerName        string
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration
}

// ErrQuotaExhausted is returned when the caller's deadline ends before the rate limiter
// would admit the request.
var ErrQuotaExhausted = errors.New("outbound request quota exhausted")

var (
	errUpstream     = errors.New("upstream failure")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// HTTP is a Doer backed by net/http, guarded by a rate limiter and a circuit breaker.
// It never retries; a failed call is terminal for the caller.
type HTTP struct {
	client  *http.Client
	limiter *rate.Limiter
	circuit *gobreaker.CircuitBreaker
}

// NewHTTP creates a transport from cfg.
func NewHTTP(cfg Config) *HTTP {
	limit := rate.Inf
	if cfg.RequestsPerDay > 0 {
		limit = rate.Every(24 * time.Hour / time.Duration(cfg.RequestsPerDay))
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	name := cfg.BreakerName
	if name == "" {
		name = "transport"
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
	})

	return &HTTP{
		client:  cfg.Client,
		limiter: rate.NewLimiter(limit, burst),
		circuit: cb,
	}
}

// Get issues the request and returns the status and body. Non-2xx statuses are not errors here.
func (t *HTTP) Get(ctx context.Context, r Request) (*Response, error) {
	if t.client == nil {
		return nil, errNoHTTPClient
	}
	if err := t.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("rate limit wait canceled: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL(), nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	result, err := t.circuit.Execute(func() (interface{}, error) {
		resp, execErr := t.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		out := &Response{StatusCode: resp.StatusCode, Body: body}

		// Server errors and throttling trip the breaker but still reach the caller.
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return out, fmt.Errorf("%w: status %d", errUpstream, resp.StatusCode)
		}
		return out, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
	}
	if resp, ok := result.(*Response); ok && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("unexpected result type from circuit breaker")
}

var _ Doer = (*HTTP)(nil)
