package openfoodfacts

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/foodscout/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// MaxPageSize is the hard cap on the page_size query parameter.
	MaxPageSize = 100

	// searchFields restricts the response payload to the fields the mapper
	// actually reads.
	searchFields = "product_name,generic_name,brands,nutriments"

	defaultTimeout = 30 * time.Second

	// maxRetryAfter caps server-provided Retry-After values.
	maxRetryAfter = time.Hour
)

// Client handles communication with the OpenFoodFacts search API. It performs
// exactly one network exchange per Search call and classifies every failure
// into the domain error taxonomy; retrying is the caller's concern.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new OpenFoodFacts API client. timeout bounds both
// connect and total request duration; zero falls back to 30s.
// requestsPerMinute paces outbound calls client-side (OpenFoodFacts asks for
// at most ~100 search requests per minute); zero disables pacing.
func NewClient(baseURL, userAgent string, timeout time.Duration, requestsPerMinute int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), 10)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search queries the OpenFoodFacts simple search endpoint and returns the
// mapped, filtered and sorted records for query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.FoodRecord, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, domain.NetworkError(err)
		}
	}

	reqURL := c.searchURL(query, limit)
	if c.debug {
		log.Printf("[OFF] GET %s", reqURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, domain.NetworkError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	// Every call that reaches the network is a live fetch; coalescing of
	// duplicate lookups happens upstream, not in an HTTP cache.
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NetworkError(err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return MapProducts(body, query)
	case resp.StatusCode == http.StatusTooManyRequests:
		delay, ok := parseRetryAfter(resp.Header.Get("Retry-After"))
		log.Printf("[OFF] rate limited (Retry-After %v, parsed=%v)", delay, ok)
		return nil, domain.RateLimitedError(delay, ok)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		log.Printf("[OFF] client error - status: %d, body: %s", resp.StatusCode, truncate(body, 200))
		return nil, domain.ClientError(resp.StatusCode)
	case resp.StatusCode >= 500 && resp.StatusCode < 600:
		log.Printf("[OFF] server error - status: %d", resp.StatusCode)
		return nil, domain.ServerError(resp.StatusCode)
	default:
		return nil, &domain.LookupError{Kind: domain.ErrInvalidResponse, StatusCode: resp.StatusCode}
	}
}

// searchURL builds the fixed-parameter search request URL.
func (c *Client) searchURL(query string, limit int) string {
	params := url.Values{}
	params.Add("action", "process")
	params.Add("search_simple", "1")
	params.Add("json", "1")
	params.Add("page_size", strconv.Itoa(limit))
	params.Add("fields", searchFields)
	params.Add("search_terms", strings.TrimSpace(query))

	return fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())
}

// parseRetryAfter parses a Retry-After header value, accepting both
// delay-seconds and HTTP-date formats. The boolean is false when the value
// is missing or unparseable.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		delay := time.Duration(seconds) * time.Second
		if delay > maxRetryAfter {
			delay = maxRetryAfter
		}
		return delay, true
	}

	if t, err := http.ParseTime(value); err == nil {
		delay := time.Until(t)
		if delay > 0 && delay <= maxRetryAfter {
			return delay, true
		}
	}

	return 0, false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
