package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/matzehuels/pidforge/pkg/cache"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
	"github.com/matzehuels/pidforge/pkg/httputil"
	"github.com/matzehuels/pidforge/pkg/observability"
)

// DefaultCacheTTL is how long a fetched catalog stays cached.
const DefaultCacheTTL = time.Hour

const (
	// breakerTrips is the number of consecutive failed fetches that open
	// the circuit.
	breakerTrips = 3
	// breakerCooldown is how long an open circuit rejects fetches before a
	// single trial request is let through.
	breakerCooldown = 30 * time.Second
)

// HTTPSource fetches definitions from a catalog API exposing
// GET {base}/api/components. Responses are cached, transient failures are
// retried with backoff, and repeated failures open a circuit breaker so an
// unreachable catalog service fails fast.
type HTTPSource struct {
	base     string
	http     *http.Client
	cache    cache.Cache
	ttl      time.Duration
	refresh  bool
	attempts int
	delay    time.Duration
	breaker  *gobreaker.CircuitBreaker
}

// NewHTTPSource creates a source for the API at baseURL. A nil cache disables
// caching; a nil client uses a client with a 10s timeout.
func NewHTTPSource(baseURL string, c cache.Cache, client *http.Client) *HTTPSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	base := strings.TrimRight(baseURL, "/")
	return &HTTPSource{
		base:     base,
		http:     client,
		cache:    c,
		ttl:      DefaultCacheTTL,
		attempts: 3,
		delay:    time.Second,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "catalog " + base,
			Timeout: breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerTrips
			},
			// A missing endpoint means the service answered.
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, httputil.ErrNotFound)
			},
		}),
	}
}

// WithRetry sets how many times a fetch is attempted and the initial
// backoff between attempts.
func (s *HTTPSource) WithRetry(attempts int, delay time.Duration) *HTTPSource {
	s.attempts = attempts
	s.delay = delay
	return s
}

// WithTTL sets the cache TTL for fetched catalogs.
func (s *HTTPSource) WithTTL(ttl time.Duration) *HTTPSource {
	s.ttl = ttl
	return s
}

// WithRefresh bypasses cached copies on read (the result is still cached).
func (s *HTTPSource) WithRefresh(refresh bool) *HTTPSource {
	s.refresh = refresh
	return s
}

// ListDefinitions fetches and parses the catalog.
func (s *HTTPSource) ListDefinitions(ctx context.Context) (*Catalog, error) {
	endpoint := s.base + "/api/components"
	key := cache.Key("catalog", endpoint)

	if !s.refresh {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "catalog")
			return ParseJSON(data)
		}
		observability.Cache().OnCacheMiss(ctx, "catalog")
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		var body []byte
		err := httputil.Retry(ctx, s.attempts, s.delay, func() error {
			var err error
			body, err = s.get(ctx, endpoint)
			return err
		})
		return body, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, pferrors.Wrap(pferrors.ErrCodeNetwork, err, "catalog service %s unavailable", s.base)
		}
		if errors.Is(err, httputil.ErrNotFound) {
			return nil, pferrors.Wrap(pferrors.ErrCodeNotFound, err, "catalog endpoint %s", endpoint)
		}
		return nil, pferrors.Wrap(pferrors.ErrCodeNetwork, err, "fetch catalog from %s", s.base)
	}

	body := res.([]byte)
	c, err := ParseJSON(body)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, body, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "catalog", len(body))
	}
	return c, nil
}

func (s *HTTPSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	observability.HTTP().OnRequest(ctx, http.MethodGet, u.Host, u.Path)
	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodGet, u.Host, u.Path, err)
		return nil, &httputil.RetryableError{Err: fmt.Errorf("request %s: %w", endpoint, err)}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodGet, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if err := httputil.CheckStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}
