// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"
	"fmt"
	"sync"

	"github.com/blefnk/dler/domain"
)

// ---------------------------------------------------------------------------
// SpyResolver
// ---------------------------------------------------------------------------

// SpyResolver implements domain.Resolver as a configurable spy.
// Configure Versions (and optionally Errors) for the packages your test
// exercises, then inspect Requested to verify lookup behavior.
type SpyResolver struct {
	// --- responses ---
	Versions map[string]string // package -> latest version
	Errors   map[string]error  // package -> forced error

	// spy: packages that were requested, in call order
	mu        sync.Mutex
	Requested []string
}

var _ domain.Resolver = (*SpyResolver)(nil)

func (r *SpyResolver) Latest(_ context.Context, pkg string) (string, error) {
	r.mu.Lock()
	r.Requested = append(r.Requested, pkg)
	r.mu.Unlock()

	if err, ok := r.Errors[pkg]; ok {
		return "", err
	}
	if version, ok := r.Versions[pkg]; ok {
		return version, nil
	}
	return "", fmt.Errorf("package not found: %s", pkg)
}

// RequestCount returns how many lookups were made for the given package.
func (r *SpyResolver) RequestCount(pkg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, requested := range r.Requested {
		if requested == pkg {
			count++
		}
	}
	return count
}

// ---------------------------------------------------------------------------
// DummyResolver — satisfies the interface but does nothing
// ---------------------------------------------------------------------------

// DummyResolver is a no-op implementation of domain.Resolver.
// Use it only for interface compliance tests or as a placeholder.
type DummyResolver struct{}

var _ domain.Resolver = (*DummyResolver)(nil)

func (d *DummyResolver) Latest(_ context.Context, _ string) (string, error) {
	return "", nil
}
