package domain

import (
	"github.com/Masterminds/semver/v3"
)

// Catalog is a workspace-shared mapping from package name to version
// specifier, stored in the workspace root manifest. Member packages reference
// it via "catalog:" specifiers instead of concrete versions.
type Catalog map[string]string

// MergeCatalog folds the collected dependency entries into the catalog,
// mutating it in place, and returns the categorized outcome.
//
// Entries absent from the catalog are added verbatim. Existing entries are
// only overwritten when the incoming version is strictly semver-greater
// (after stripping range prefixes) — a merge never lowers a version. When
// either side fails to parse as semver the catalog is left untouched and the
// entry lands in Skipped; parse failures are conservative skips, not errors.
func MergeCatalog(catalog Catalog, incoming []DependencyEntry) CatalogMergeResult {
	var result CatalogMergeResult

	for _, entry := range incoming {
		existing, ok := catalog[entry.Name]
		if !ok {
			catalog[entry.Name] = entry.VersionSpecifier
			result.Added = append(result.Added, entry)
			continue
		}

		if semverGreater(entry.VersionSpecifier, existing) {
			entry.PreviousVersion = existing
			catalog[entry.Name] = entry.VersionSpecifier
			result.Bumped = append(result.Bumped, entry)
			continue
		}

		result.Skipped = append(result.Skipped, entry)
	}

	return result
}

// semverGreater reports whether a is strictly greater than b, comparing the
// versions behind any range prefix. Unparseable versions compare as not
// greater.
func semverGreater(a, b string) bool {
	va, err := semver.NewVersion(StripRangePrefix(a))
	if err != nil {
		return false
	}
	vb, err := semver.NewVersion(StripRangePrefix(b))
	if err != nil {
		return false
	}
	return va.GreaterThan(vb)
}
