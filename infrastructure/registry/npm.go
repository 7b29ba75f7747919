// Package registry resolves the latest published version of npm packages,
// with retries, a short-lived in-process cache, and a direct packument
// fallback when the latest-version endpoint fails.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/blefnk/dler/domain"
)

const (
	// DefaultURL is the public npm registry.
	DefaultURL = "https://registry.npmjs.org"

	cacheTTL       = 5 * time.Minute
	requestTimeout = 15 * time.Second
	retryMax       = 2
)

// Clock supplies the current time; injectable so cache expiry is testable.
type Clock func() time.Time

// Resolver implements domain.Resolver against an npm-compatible registry.
//
// Concurrent lookups for distinct packages are independent. Concurrent
// lookups for the same uncached package are not deduplicated — both hit the
// network and the cache is last-write-wins, which is harmless since both
// writers compute the same value within the TTL window.
type Resolver struct {
	baseURL  string
	token    string
	client   *retryablehttp.Client
	fallback *http.Client
	cache    *versionCache
}

var _ domain.Resolver = (*Resolver)(nil)

// Option customizes a Resolver.
type Option func(*Resolver)

// WithToken sets a bearer token sent on every registry request.
func WithToken(token string) Option {
	return func(r *Resolver) { r.token = token }
}

// WithClock replaces the cache clock, for deterministic expiry in tests.
func WithClock(clock Clock) Option {
	return func(r *Resolver) { r.cache.now = clock }
}

// WithCacheTTL overrides the default 5-minute cache lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.cache.ttl = ttl }
}

// NewResolver creates a resolver for the given registry base URL. An empty
// URL falls back to the public npm registry.
func NewResolver(baseURL string, opts ...Option) *Resolver {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = nil
	client.HTTPClient.Timeout = requestTimeout

	r := &Resolver{
		baseURL:  baseURL,
		client:   client,
		fallback: &http.Client{Timeout: requestTimeout},
		cache: &versionCache{
			ttl:     cacheTTL,
			now:     time.Now,
			entries: map[string]cachedVersion{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Latest returns the newest published version of the package. Cache hits
// bypass the network entirely. On primary failure a single direct packument
// query is attempted; when both fail, the combined error is returned — never
// silently swallowed.
func (r *Resolver) Latest(ctx context.Context, pkg string) (string, error) {
	if version, ok := r.cache.get(pkg); ok {
		return version, nil
	}

	version, primaryErr := r.latestFromEndpoint(ctx, pkg)
	if primaryErr == nil {
		r.cache.put(pkg, version)
		return version, nil
	}

	logger.Debugf("Primary lookup for %q failed (%v), trying packument fallback", pkg, primaryErr)

	version, fallbackErr := r.latestFromPackument(ctx, pkg)
	if fallbackErr == nil {
		r.cache.put(pkg, version)
		return version, nil
	}

	return "", fmt.Errorf("failed to resolve %q: %v; fallback: %w", pkg, primaryErr, fallbackErr)
}

// latestFromEndpoint queries the <registry>/<pkg>/latest endpoint with
// retries.
func (r *Resolver) latestFromEndpoint(ctx context.Context, pkg string) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx, http.MethodGet, r.packageURL(pkg)+"/latest", nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	r.authorize(req.Header)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		Version string `json:"version"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return "", fmt.Errorf("failed to parse registry response: %w", decodeErr)
	}
	if payload.Version == "" {
		return "", errors.New("registry response has no version field")
	}

	return payload.Version, nil
}

// latestFromPackument fetches the full package document once (no retries)
// and reads dist-tags.latest.
func (r *Resolver) latestFromPackument(ctx context.Context, pkg string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.packageURL(pkg), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	r.authorize(req.Header)

	resp, err := r.fallback.Do(req)
	if err != nil {
		return "", fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var payload struct {
		DistTags map[string]string `json:"dist-tags"`
	}
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return "", fmt.Errorf("failed to parse packument: %w", decodeErr)
	}

	latest, ok := payload.DistTags["latest"]
	if !ok || latest == "" {
		return "", errors.New("packument has no latest dist-tag")
	}
	return latest, nil
}

// packageURL builds the registry URL for a package, percent-encoding the
// slash in scoped names (@scope/name) as the registry requires.
func (r *Resolver) packageURL(pkg string) string {
	return r.baseURL + "/" + url.PathEscape(pkg)
}

func (r *Resolver) authorize(header http.Header) {
	if r.token != "" {
		header.Set("Authorization", "Bearer "+r.token)
	}
}

// --- cache ---

type cachedVersion struct {
	version  string
	storedAt time.Time
}

// versionCache is a TTL map keyed by package name. Guarded by a mutex since
// lookups fan out across goroutines.
type versionCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     Clock
	entries map[string]cachedVersion
}

func (c *versionCache) get(pkg string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[pkg]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, pkg)
		return "", false
	}
	return entry.version, true
}

func (c *versionCache) put(pkg, version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[pkg] = cachedVersion{version: version, storedAt: c.now()}
}
