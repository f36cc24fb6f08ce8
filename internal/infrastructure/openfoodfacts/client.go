package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nichefood/backend/internal/domain"
	"golang.org/x/time/rate"
)

const maxAttempts = 3

// productFields limits the payload to what the assessment needs.
var productFields = []string{
	"code",
	"product_name",
	"product_name_en",
	"generic_name",
	"brands",
	"categories",
	"ingredients_text",
	"ingredients_text_en",
	"nutriscore_grade",
	"nutriscore_data",
	"image_url",
}

// Client handles communication with the OpenFoodFacts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	backoff     func(attempt int) time.Duration
	debug       bool
}

// NewClient creates a new OpenFoodFacts API client
func NewClient(baseURL, userAgent string) *Client {
	// OpenFoodFacts allows 100 product reads per minute
	limiter := rate.NewLimiter(rate.Limit(100.0/60.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: limiter,
		backoff:     exponentialBackoff,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetTimeout overrides the HTTP client timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		c.httpClient.Timeout = timeout
	}
}

// SetRateLimit sets the outbound request budget per minute
func (c *Client) SetRateLimit(perMinute int) {
	if perMinute > 0 {
		c.rateLimiter.SetLimit(rate.Limit(float64(perMinute) / 60.0))
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// retryable reports whether a response status is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	return resp, nil
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// GetProduct fetches a product record by barcode
func (c *Client) GetProduct(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	endpoint := fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode))
	params := url.Values{}
	params.Add("fields", strings.Join(productFields, ","))
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	if c.debug {
		slog.Debug("[OFF] GetProduct", "barcode", barcode, "url", reqURL)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			slog.Warn("[OFF] request failed", "attempt", attempt, "error", err)
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFailure, readErr)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			return nil, domain.ErrProductNotFound
		}
		if resp.StatusCode != http.StatusOK {
			slog.Warn("[OFF] API error", "attempt", attempt, "status", resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: %w", domain.ErrRateLimited, lastErr)
			}
			if retryable(resp.StatusCode) {
				continue
			}
			return nil, lastErr
		}

		var payload productResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
		}

		if payload.Status == 0 || payload.Product == nil {
			return nil, domain.ErrProductNotFound
		}

		if c.debug {
			slog.Debug("[OFF] product found", "barcode", barcode, "name", payload.Product.ProductName)
		}
		return MapToProductRecord(barcode, payload.Product), nil
	}

	slog.Error("[OFF] all retries failed", "barcode", barcode, "error", lastErr)
	return nil, lastErr
}
