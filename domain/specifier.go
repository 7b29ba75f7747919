package domain

import (
	"errors"
	"strings"
)

// ErrConflictingSectionFlags is returned by SectionFilter.Validate when more
// than one exclusive section flag is set.
var ErrConflictingSectionFlags = errors.New(
	"only one of --prod-only, --dev-only, --peer-only, --optional-only, --catalogs-only may be set",
)

// opaquePrefixes mark specifiers that do not resolve to a plain semver version
// and are therefore never update candidates: aliases, workspace/catalog
// references, and git/file/link/URL sources.
var opaquePrefixes = []string{
	"npm:",
	"workspace:",
	"catalog:",
	"git+",
	"file:",
	"link:",
	"http:",
	"https:",
}

// IsUpdateCandidate reports whether a version specifier can be checked against
// the registry. Opaque specifiers and empty strings are excluded; exact and
// range-prefixed semver specifiers qualify.
func IsUpdateCandidate(specifier string) bool {
	if specifier == "" {
		return false
	}
	for _, prefix := range opaquePrefixes {
		if strings.HasPrefix(specifier, prefix) {
			return false
		}
	}
	return true
}

// IsExact reports whether the specifier pins a single version, i.e. carries
// no leading range prefix.
func IsExact(specifier string) bool {
	return !strings.HasPrefix(specifier, "^") && !strings.HasPrefix(specifier, "~")
}

// StripRangePrefix removes a leading "^" or "~" so the remainder can be parsed
// as a concrete version.
func StripRangePrefix(specifier string) string {
	return strings.TrimLeft(specifier, "^~")
}

// CatalogRefName extracts the named-catalog component of a "catalog:" specifier.
// "catalog:" refers to the default catalog (empty name); "catalog:react17"
// refers to the catalog named react17. The second return is false when the
// specifier is not a catalog reference at all.
func CatalogRefName(specifier string) (string, bool) {
	if !strings.HasPrefix(specifier, "catalog:") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(specifier, "catalog:")), true
}
