// Package client provides the storefront HTTP adapter: requests against a
// configured base URL, bearer authentication from the session, and a
// uniform error contract. It never retries and sets no timeout.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Sternrassler/storefront-client/pkg/session"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://127.0.0.1:8000/api"

// Prometheus metrics for adapter requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_requests_total",
		Help: "Total storefront API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_request_duration_seconds",
		Help:    "Storefront API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_errors_total",
		Help: "Total storefront API errors by class",
	}, []string{"class"})
)

// Request describes one API call relative to the base URL.
type Request struct {
	// Name identifies the endpoint in logs and metrics (getCart, checkout).
	Name   string
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
}

// Config holds the adapter configuration.
type Config struct {
	// BaseURL is prefixed to every request path.
	BaseURL string

	// Session supplies the bearer token. Required.
	Session *session.Session

	// UserAgent header sent with every request.
	UserAgent string

	// HTTPClient overrides the transport (tests). Its Timeout is left as is.
	HTTPClient *http.Client

	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool
}

// DefaultConfig returns a configuration for the local backend.
func DefaultConfig(sess *session.Session) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Session:   sess,
		UserAgent: "storefront-client/0.1.0",
	}
}

// Client is the storefront HTTP adapter.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	session    *session.Session
	config     Config
	logger     zerolog.Logger
}

// New creates a new adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("base url has no host (got %q)", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Credentials are included: cookies set by the API are sent back.
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}
	if cfg.Tracing {
		transport := httpClient.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		traced := *httpClient
		traced.Transport = otelhttp.NewTransport(transport)
		httpClient = &traced
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		session:    cfg.Session,
		config:     cfg,
		logger:     log.With().Str("component", "storefront-client").Logger(),
	}, nil
}

// SetLogger replaces the component logger.
func (c *Client) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

// Session returns the session the adapter authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// URL resolves a request path and query against the base URL.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do performs the request. It returns the raw JSON body on 2xx (nil when
// the body is empty) and an *APIError otherwise.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	name := r.Name
	if name == "" {
		name = r.Method + " " + r.Path
	}

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(name).Observe(time.Since(startTime).Seconds())
	}()

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("endpoint", name).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Bool("authenticated", req.Header.Get("Authorization") != "").
		Msg("Executing storefront request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", name).Msg("HTTP request failed")
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(name, "network_error").Inc()
		return nil, &APIError{
			Class:   ErrorClassNetwork,
			Message: "network request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		requestsTotal.WithLabelValues(name, "network_error").Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	status := strconv.Itoa(resp.StatusCode)
	requestsTotal.WithLabelValues(name, status).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class := classifyStatus(resp.StatusCode)
		errorsTotal.WithLabelValues(string(class)).Inc()
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Class:      class,
			Message:    errorMessage(resp.StatusCode, body),
		}
		c.logger.Warn().
			Str("endpoint", name).
			Int("status_code", resp.StatusCode).
			Str("error_class", string(class)).
			Str("message", apiErr.Message).
			Msg("Storefront request error")
		return nil, apiErr
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Class:      ErrorClassDecode,
			Message:    "response is not valid JSON",
		}
	}
	return json.RawMessage(body), nil
}

// newRequest builds the outgoing request with headers.
func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, &APIError{
				Class:   ErrorClassClient,
				Message: "encode " + r.Name + " body",
				Err:     err,
			}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(r.Path, r.Query), body)
	if err != nil {
		return nil, &APIError{
			Class:   ErrorClassClient,
			Message: "create request",
			Err:     err,
		}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// Get performs a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	raw, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return Decode(raw, out)
}

// Decode unmarshals raw into out. Empty input leaves out untouched.
func Decode(raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return &APIError{
			Class:   ErrorClassDecode,
			Message: "decode response",
			Err:     err,
		}
	}
	return nil
}
