package weather

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

	"github.com/jmwislek/order-notify-service/internal/observability"
)

// Client answers weather questions for a city. Implementations make at most
// one remote call per question; callers decide whether to retry.
type Client interface {
	Temperature(ctx context.Context, city string) (float64, error)
	IsGoodWeather(ctx context.Context, city string) (bool, error)
}

// ErrUpstreamFailure is returned for any failed exchange with the weather
// API: transport errors, timeouts, non-2xx statuses, and undecodable bodies.
var ErrUpstreamFailure = errors.New("upstream failure")

// GoodWeatherThresholdC is the exclusive bound above which a temperature
// counts as good weather. Exactly 20 degrees is not good weather.
const GoodWeatherThresholdC = 20.0

const (
	defaultBaseURL = "https://api.weather.com"
	defaultAPIKey  = "demo"
	defaultTimeout = 2 * time.Second
)

// APIClient implements Client against the HTTP weather API. Each question is
// a single best-effort GET with an explicit timeout; there is no retry and
// no caching at this layer.
type APIClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewAPIClient creates a client for the weather API. Empty apiKey, empty
// baseURL, and non-positive timeout fall back to defaults.
func NewAPIClient(apiKey, baseURL string, timeout time.Duration) *APIClient {
	if apiKey == "" {
		apiKey = defaultAPIKey
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &APIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		timeout: timeout,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type currentResponse struct {
	Temperature float64 `json:"temperature"`
}

// Temperature fetches the current temperature for city in a single attempt.
// Any failure along the way wraps ErrUpstreamFailure.
func (c *APIClient) Temperature(ctx context.Context, city string) (float64, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.buildRequest(reqCtx, city)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("build request: %w", err)
	}

	corrID := extractCorrelationID(ctx)
	if corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		observability.WeatherAPIDuration.WithLabelValues("error").Observe(duration)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return 0, fmt.Errorf("%w: request timeout: %w", ErrUpstreamFailure, err)
		}
		return 0, fmt.Errorf("%w: http request failed: %w", ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	duration := time.Since(start).Seconds()
	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: read response body: %w", ErrUpstreamFailure, err)
	}

	var apiResp currentResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return 0, fmt.Errorf("%w: parse response: %w", ErrUpstreamFailure, err)
	}

	return apiResp.Temperature, nil
}

// IsGoodWeather reports whether the current temperature in city exceeds
// GoodWeatherThresholdC. Errors from Temperature pass through unchanged.
func (c *APIClient) IsGoodWeather(ctx context.Context, city string) (bool, error) {
	temp, err := c.Temperature(ctx, city)
	if err != nil {
		return false, err
	}
	return temp > GoodWeatherThresholdC, nil
}

func (c *APIClient) buildRequest(ctx context.Context, city string) (*http.Request, error) {
	endpoint, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + "/current")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	params := url.Values{}
	params.Set("city", city)
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
