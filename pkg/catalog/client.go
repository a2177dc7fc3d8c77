// Package catalog provides the HTTP client for the public Pokémon catalog
// service (PokéAPI) and the typed records it returns.
package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public catalog API root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Endpoint labels used for logging and metrics.
const (
	endpointPokemon = "/pokemon/{id}"
	endpointTypes   = "/type"
)

// Prometheus metrics for catalog client operations.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexview_catalog_requests_total",
		Help: "Total catalog requests by endpoint and status",
	}, []string{"endpoint", "status"})

	catalogRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dexview_catalog_request_duration_seconds",
		Help:    "Catalog request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	catalogErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexview_catalog_errors_total",
		Help: "Total catalog errors by class",
	}, []string{"class"})

	catalogRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dexview_catalog_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})
)

// Client is the catalog API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root without trailing slash.
	BaseURL string

	// UserAgent header sent with every request (required).
	UserAgent string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// Retry is opt-in; the default is a single attempt.
	Retry RetryConfig

	// HTTPClient overrides the default client (tests, custom transports).
	HTTPClient *http.Client
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new catalog client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative (got %s)", cfg.Timeout)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		logger:     log.With().Str("component", "catalog-client").Logger(),
	}, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// FetchRecordByID retrieves one record. Any failure matches ErrNotFoundOrTransport;
// a 404 additionally matches ErrNotFound.
func (c *Client) FetchRecordByID(ctx context.Context, id int) (*Record, error) {
	if id < 1 {
		return nil, fmt.Errorf("record id must be positive (got %d)", id)
	}

	body, err := c.get(ctx, endpointPokemon, "/pokemon/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}

	record, err := decodeRecord(body)
	if err != nil {
		return nil, c.decodeFailure(endpointPokemon, err)
	}

	return record, nil
}

// FetchTypeVocabulary retrieves the ordered list of type tags.
func (c *Client) FetchTypeVocabulary(ctx context.Context) ([]TypeTag, error) {
	body, err := c.get(ctx, endpointTypes, "/type")
	if err != nil {
		return nil, err
	}

	tags, err := decodeTypeList(body)
	if err != nil {
		return nil, c.decodeFailure(endpointTypes, err)
	}

	c.logger.Debug().Int("types", len(tags)).Msg("Type vocabulary fetched")
	return tags, nil
}

// get performs a GET against the API and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	var body []byte

	err := retryWithBackoff(ctx, c.config.Retry, c.logger, func() (ErrorClass, error) {
		var attemptErr *Error
		body, attemptErr = c.do(ctx, endpoint, path)
		if attemptErr != nil {
			return attemptErr.ErrorClass, attemptErr
		}
		return "", nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// do executes a single HTTP request.
func (c *Client) do(ctx context.Context, endpoint, path string) ([]byte, *Error) {
	startTime := time.Now()
	defer func() {
		catalogRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+path, nil)
	if err != nil {
		return nil, &Error{Endpoint: endpoint, ErrorClass: ErrorClassClient, Message: "create request", Err: err}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("path", path).
		Msg("Executing catalog request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Msg("HTTP request failed")
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		catalogRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, &Error{Endpoint: endpoint, ErrorClass: ErrorClassNetwork, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	catalogRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		class := classifyStatus(resp.StatusCode)
		catalogErrorsTotal.WithLabelValues(string(class)).Inc()

		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Catalog request error")

		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil, &Error{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		catalogErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, &Error{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		}
	}

	return body, nil
}

func (c *Client) decodeFailure(endpoint string, err error) error {
	catalogErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
	c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Catalog response could not be decoded")
	return &Error{
		Endpoint:   endpoint,
		StatusCode: http.StatusOK,
		ErrorClass: ErrorClassDecode,
		Message:    "invalid response body",
		Err:        err,
	}
}
