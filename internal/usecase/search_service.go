package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/foodscout/backend/internal/domain"
	"github.com/foodscout/backend/internal/infrastructure/metrics"
)

const (
	defaultMaxRetries     = 2
	defaultBaseDelay      = 500 * time.Millisecond
	defaultRateLimitDelay = 2 * time.Second
	defaultMaxPageSize    = 100

	minQueryLength = 2
)

// SearchServiceConfig holds tuning for the search pipeline. Zero values fall
// back to the defaults above.
type SearchServiceConfig struct {
	MaxRetries     int           // retries after the first try
	BaseDelay      time.Duration // linear backoff base for 5xx/network failures
	RateLimitDelay time.Duration // cooldown when a 429 carries no Retry-After
	MaxPageSize    int           // cap on the per-search result limit
}

// SearchService is the single entry point for food lookups. It coalesces
// concurrent searches for the same normalized query into one network fetch,
// honours the global rate-limit cooldown, retries transient failures with
// an escalating backoff, and always resolves with a list - a failed lookup
// degrades to "no results" rather than an error.
type SearchService struct {
	source   domain.FoodSource
	metrics  *metrics.Collector
	inflight *inflightRegistry
	guard    *rateLimitGuard

	maxRetries     int
	baseDelay      time.Duration
	rateLimitDelay time.Duration
	maxPageSize    int

	// now and sleep are injectable so the attempt/backoff contract is
	// testable without a real clock.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	lastErr error
}

// NewSearchService creates a search service with dependencies. collector may
// be nil to run without metrics.
func NewSearchService(source domain.FoodSource, collector *metrics.Collector, config SearchServiceConfig) *SearchService {
	maxRetries := config.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	if config.MaxRetries == 0 {
		maxRetries = defaultMaxRetries
	}

	baseDelay := config.BaseDelay
	if baseDelay <= 0 {
		baseDelay = defaultBaseDelay
	}

	rateLimitDelay := config.RateLimitDelay
	if rateLimitDelay <= 0 {
		rateLimitDelay = defaultRateLimitDelay
	}

	maxPageSize := config.MaxPageSize
	if maxPageSize <= 0 || maxPageSize > defaultMaxPageSize {
		maxPageSize = defaultMaxPageSize
	}

	svc := &SearchService{
		source:         source,
		metrics:        collector,
		inflight:       newInflightRegistry(),
		maxRetries:     maxRetries,
		baseDelay:      baseDelay,
		rateLimitDelay: rateLimitDelay,
		maxPageSize:    maxPageSize,
		now:            time.Now,
		sleep:          sleepContext,
	}
	// The guard reads the clock through the service, so replacing now
	// covers the whole pipeline.
	svc.guard = newRateLimitGuard(func() time.Time { return svc.now() })
	return svc
}

// Search looks up foods matching query, delivering at most limit records.
// It never returns an error: exhausted retries and terminal failures yield
// an empty list. Concurrent calls for the same normalized query share one
// network fetch and receive the identical result.
func (s *SearchService) Search(ctx context.Context, query string, limit int) []domain.FoodRecord {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		s.metrics.SearchResult("short_query")
		return []domain.FoodRecord{}
	}

	if limit <= 0 || limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	key := domain.SearchKey(query)
	call, owner := s.inflight.begin(key)
	if !owner {
		s.metrics.DedupCoalesced()
		if records, ok := call.wait(ctx); ok {
			return records
		}
		// Caller gave up; the fetch keeps running for the other waiters
		// and this caller still gets a terminal value.
		return []domain.FoodRecord{}
	}

	records := s.fetchWithRetry(ctx, trimmed, limit)
	if records == nil {
		records = []domain.FoodRecord{}
	}
	s.inflight.complete(key, call, records)
	return records
}

// LastError reports the classification of the most recent transport failure,
// or nil after a successful fetch. It is a diagnostic channel only; Search
// never surfaces errors to callers.
func (s *SearchService) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// InFlight returns the number of fetches currently running.
func (s *SearchService) InFlight() int {
	return s.inflight.size()
}

// fetchWithRetry drives one fetch through the attempt loop: consult the
// rate-limit guard, hit the transport, classify the failure and either back
// off and go again or give up with an empty result.
func (s *SearchService) fetchWithRetry(ctx context.Context, query string, limit int) []domain.FoodRecord {
	totalTries := s.maxRetries + 1

	for attempt := 0; attempt < totalTries; attempt++ {
		var failure *domain.LookupError

		if wait := s.guard.remaining(); wait > 0 {
			// A guard refusal is handled exactly like a 429 from the
			// server: it consumes an attempt and waits out the window
			// without going to the network.
			failure = domain.RateLimitedError(wait, true)
			s.metrics.RateLimitBlock()
			log.Printf("[SEARCH] %q blocked by rate-limit cooldown for %v (attempt %d/%d)", query, wait, attempt+1, totalTries)
		} else {
			records, err := s.source.Search(ctx, query, limit)
			if err == nil {
				s.metrics.TransportCall("ok")
				s.setLastError(nil)
				if len(records) == 0 {
					s.metrics.SearchResult("empty")
				} else {
					s.metrics.SearchResult("ok")
				}
				return records
			}

			failure = classify(err)
			s.metrics.TransportCall(classLabel(failure))
			s.setLastError(failure)
			log.Printf("[SEARCH] %q attempt %d/%d failed: %v", query, attempt+1, totalTries, failure)

			if errors.Is(failure, domain.ErrRateLimited) {
				delay := s.rateLimitDelay
				if failure.HasRetryAfter {
					delay = failure.RetryAfter
				}
				s.guard.block(delay)
			}
		}

		delay, retry := s.retryDelay(failure, attempt, totalTries)
		if !retry {
			break
		}

		s.metrics.Retry()
		if err := s.sleep(ctx, delay); err != nil {
			s.setLastError(failure)
			break
		}
	}

	s.metrics.SearchResult("failed")
	return []domain.FoodRecord{}
}

// retryDelay decides whether the failure warrants another attempt and after
// what delay. Rate limiting waits out the server-provided (or default)
// window; server and network errors back off linearly.
func (s *SearchService) retryDelay(failure *domain.LookupError, attempt, totalTries int) (time.Duration, bool) {
	if attempt+1 >= totalTries {
		return 0, false
	}
	if !failure.Retryable() {
		return 0, false
	}

	if errors.Is(failure, domain.ErrRateLimited) {
		if failure.HasRetryAfter {
			return failure.RetryAfter, true
		}
		return s.rateLimitDelay, true
	}

	return time.Duration(attempt+1) * s.baseDelay, true
}

func (s *SearchService) setLastError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// classify normalizes any transport error into a LookupError. Errors that
// escaped classification at the transport boundary are treated as network
// failures.
func classify(err error) *domain.LookupError {
	var lerr *domain.LookupError
	if errors.As(err, &lerr) {
		return lerr
	}
	return domain.NetworkError(err)
}

func classLabel(failure *domain.LookupError) string {
	switch failure.Kind {
	case domain.ErrRateLimited:
		return "rate_limited"
	case domain.ErrServerError:
		return "server_error"
	case domain.ErrClientError:
		return "client_error"
	case domain.ErrNetwork:
		return "network"
	case domain.ErrDecoding:
		return "decoding"
	default:
		return "invalid"
	}
}
