package domain

import "context"

// Resolver looks up the latest published version of a package.
type Resolver interface {
	// Latest returns the newest version of the named package. Implementations
	// are expected to cache aggressively; a failed lookup must surface the
	// underlying cause rather than returning an empty version.
	Latest(ctx context.Context, pkg string) (string, error)
}
