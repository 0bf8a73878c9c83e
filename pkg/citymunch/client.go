// Package citymunch provides a client for the CityMunch partner API: catalog
// hints, geocoding, restaurant search and active offer events.
package citymunch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/citymunch/slack-bot/internal/resilience"
)

// Client defines the partner API operations.
type Client interface {
	// SearchHints returns every cuisine type and restaurant name in the catalog.
	SearchHints(ctx context.Context) (*SearchHints, error)
	// Geocode looks up a free-text place name.
	Geocode(ctx context.Context, placeName string) (*GeocodeResponse, error)
	// SearchRestaurants returns authorised restaurants matching q.
	SearchRestaurants(ctx context.Context, q RestaurantQuery) (*RestaurantSearchResponse, error)
	// ActiveEvents returns offer events for the given restaurants and day.
	ActiveEvents(ctx context.Context, q EventQuery) (*ActiveEventsResponse, error)
}

const (
	defaultBaseURL = "https://api.citymunchapp.com"
	defaultAccept  = "application/vnd.citymunch.v14+json"
)

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithAccept overrides the versioned Accept media type.
func WithAccept(accept string) Option {
	return func(c *httpClient) {
		c.accept = accept
	}
}

// WithHTTPClient sets a custom HTTP client. A nil client keeps the default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. A client passed to
// WithHTTPClient is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.timeout = d
	}
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the retry policy for transient failures.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	accept  string
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClient creates a partner API client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		accept:  defaultAccept,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(20, 20),
		retry:   resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

func (c *httpClient) SearchHints(ctx context.Context) (*SearchHints, error) {
	var out SearchHints
	if err := c.get(ctx, "search-hints", "/offers/search-hints", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Geocode(ctx context.Context, placeName string) (*GeocodeResponse, error) {
	var out GeocodeResponse
	params := url.Values{"placeName": {placeName}}
	if err := c.get(ctx, "geocode", "/geo/geocode", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) SearchRestaurants(ctx context.Context, q RestaurantQuery) (*RestaurantSearchResponse, error) {
	var out RestaurantSearchResponse
	if err := c.get(ctx, "restaurant-search", "/restaurants/search/authorised-restaurants", q.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ActiveEvents(ctx context.Context, q EventQuery) (*ActiveEventsResponse, error) {
	var out ActiveEventsResponse
	if err := c.get(ctx, "active-events", "/offers/search/active-events-by-restaurant-ids", q.Values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get issues a GET with retries and decodes the JSON body into out. An empty
// body leaves out untouched.
func (c *httpClient) get(ctx context.Context, op, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	retry := c.retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("citymunch", op)
	}

	body, err := resilience.DoVal(ctx, retry, func(ctx context.Context) ([]byte, error) {
		return c.do(ctx, reqURL)
	})
	if err != nil {
		return eris.Wrapf(err, "citymunch: %s", op)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "citymunch: %s: decode response", op)
	}
	return nil
}

func (c *httpClient) do(ctx context.Context, reqURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Partner "+c.apiKey)
	req.Header.Set("Accept", c.accept)

	zap.L().Debug("citymunch request", zap.String("url", reqURL))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read body")
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}
	return body, nil
}
