package fred

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"EconDash/internal/domain/models"
	drepo "EconDash/internal/domain/repository"
	"EconDash/internal/service/ratelimit"
	"EconDash/pkg/config"
	phttp "EconDash/pkg/http"
	"EconDash/pkg/logger"
	"EconDash/pkg/util"
)

const (
	DefaultBaseURL   = "https://api.stlouisfed.org/fred"
	observationsPath = "/series/observations"
	missingValue     = "."
)

// APIError is an error payload returned by FRED.
type APIError struct {
	StatusCode int
	Code       int    `json:"error_code"`
	Message    string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("fred api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true for throttling and server-side failures.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// Option configures Client.
type Option func(*Client)

// Client fetches observation histories from the FRED REST API.
type Client struct {
	apiKey  string
	baseURL string
	http    *phttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

var _ drepo.SeriesFetcher = (*Client)(nil)

// New creates a FRED client. apiKey may be empty or the placeholder, in
// which case every fetch fails with a configuration error.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: DefaultBaseURL,
		http:    phttp.NewClient(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = phttp.NewClient(phttp.WithTimeout(d))
	}
}

// WithLimiter throttles outgoing requests per api key.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// FetchSeries returns the full observation history of seriesID in ascending
// date order.
func (c *Client) FetchSeries(ctx context.Context, seriesID string) ([]models.RawObservation, error) {
	const op = "fred.FetchSeries"

	if c.apiKey == "" || c.apiKey == config.PlaceholderAPIKey {
		return nil, models.NewPipelineError(models.FailureConfiguration, op,
			fmt.Errorf("fred api key is not configured"))
	}
	if c.limiter != nil && !c.limiter.Allow(c.apiKey) {
		return nil, models.NewPipelineError(models.FailureNetwork, op,
			fmt.Errorf("rate limit exceeded for series %s", seriesID))
	}

	start := time.Now()
	status, body, err := c.http.SendAndRead(ctx, &phttp.RequestOptions{
		Method: phttp.MethodGet,
		URL:    c.baseURL + observationsPath,
		Headers: map[string]string{
			"Accept": "application/json",
		},
		QueryParams: map[string][]string{
			"series_id":  {seriesID},
			"api_key":    {c.apiKey},
			"file_type":  {"json"},
			"sort_order": {"asc"},
		},
	})
	if err != nil {
		return nil, models.NewPipelineError(models.FailureNetwork, op,
			fmt.Errorf("get %s: %w", seriesID, err))
	}

	if status != http.StatusOK {
		return nil, classifyStatus(op, seriesID, status, body)
	}

	var resp observationsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, models.NewPipelineError(models.FailureDataShape, op,
			fmt.Errorf("decode %s: %w", seriesID, err))
	}
	if resp.Observations == nil {
		return nil, models.NewPipelineError(models.FailureDataShape, op,
			fmt.Errorf("decode %s: missing observations", seriesID))
	}

	out := make([]models.RawObservation, 0, len(resp.Observations))
	for _, o := range resp.Observations {
		d, err := util.ParseDate(o.Date)
		if err != nil {
			return nil, models.NewPipelineError(models.FailureDataShape, op,
				fmt.Errorf("%s: %w", seriesID, err))
		}
		obs := models.RawObservation{Date: d}
		if v := strings.TrimSpace(o.Value); v != missingValue {
			if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				obs.Value = f
				obs.Valid = true
			}
		}
		out = append(out, obs)
	}

	c.log.Debug("fred series fetched",
		logger.String("series", seriesID),
		logger.Int("observations", len(out)),
		logger.Duration("took_ms", time.Since(start)),
	)
	return out, nil
}

// FetchAll fetches the three dashboard series sequentially.
func (c *Client) FetchAll(ctx context.Context) (map[models.Indicator][]models.RawObservation, error) {
	out := make(map[models.Indicator][]models.RawObservation, 3)
	for _, ind := range models.Indicators() {
		obs, err := c.FetchSeries(ctx, ind.SeriesID())
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", ind, err)
		}
		out[ind] = obs
	}
	return out, nil
}

func classifyStatus(op, seriesID string, status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	apiErr.StatusCode = status

	switch {
	case apiErr.IsRetryable():
		return models.NewPipelineError(models.FailureNetwork, op, apiErr)
	case isAuthFailure(status, apiErr.Message):
		return models.NewPipelineError(models.FailureAuthentication, op, apiErr)
	default:
		return models.NewPipelineError(models.FailureDataShape, op,
			fmt.Errorf("series %s: %w", seriesID, apiErr))
	}
}

func isAuthFailure(status int, msg string) bool {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return true
	}
	return status == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "api_key")
}
