package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blefnk/dler/domain"
)

func entry(name, specifier string) domain.DependencyEntry {
	return domain.DependencyEntry{
		Name:             name,
		VersionSpecifier: specifier,
		Locations:        []string{domain.LocDependencies},
		ManifestPath:     "/ws/packages/a/package.json",
	}
}

func TestMergeCatalog(t *testing.T) {
	t.Parallel()

	t.Run("should add entries missing from the catalog verbatim", func(t *testing.T) {
		t.Parallel()

		// given
		catalog := domain.Catalog{}

		// when
		result := domain.MergeCatalog(catalog, []domain.DependencyEntry{entry("lodash", "^4.17.21")})

		// then
		require.Len(t, result.Added, 1)
		assert.Empty(t, result.Bumped)
		assert.Empty(t, result.Skipped)
		assert.Equal(t, "^4.17.21", catalog["lodash"])
	})

	t.Run("should bump when incoming is strictly greater", func(t *testing.T) {
		t.Parallel()

		// given
		catalog := domain.Catalog{"react": "^17.0.0"}

		// when
		result := domain.MergeCatalog(catalog, []domain.DependencyEntry{entry("react", "^18.2.0")})

		// then
		require.Len(t, result.Bumped, 1)
		assert.Equal(t, "^17.0.0", result.Bumped[0].PreviousVersion)
		assert.Equal(t, "^18.2.0", catalog["react"])
	})

	t.Run("should never lower an existing catalog version", func(t *testing.T) {
		t.Parallel()

		// given: workspace root catalog already carries react 18
		catalog := domain.Catalog{"react": "^18.0.0"}

		// when: package A still declares react 17
		result := domain.MergeCatalog(catalog, []domain.DependencyEntry{entry("react", "^17.0.0")})

		// then: catalog keeps 18, nothing bumped
		assert.Empty(t, result.Added)
		assert.Empty(t, result.Bumped)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "^18.0.0", catalog["react"])
	})

	t.Run("should skip equal versions", func(t *testing.T) {
		t.Parallel()

		// given
		catalog := domain.Catalog{"lodash": "^4.17.21"}

		// when
		result := domain.MergeCatalog(catalog, []domain.DependencyEntry{entry("lodash", "^4.17.21")})

		// then
		assert.Empty(t, result.Added)
		assert.Empty(t, result.Bumped)
		assert.Len(t, result.Skipped, 1)
	})

	t.Run("should skip conservatively when a version fails to parse", func(t *testing.T) {
		t.Parallel()

		// given
		catalog := domain.Catalog{"weird": "not-a-version"}

		// when
		result := domain.MergeCatalog(catalog, []domain.DependencyEntry{entry("weird", "^2.0.0")})

		// then: parse failure is a skip, never an error or an overwrite
		assert.Empty(t, result.Bumped)
		require.Len(t, result.Skipped, 1)
		assert.Equal(t, "not-a-version", catalog["weird"])
	})

	t.Run("should be idempotent", func(t *testing.T) {
		t.Parallel()

		// given
		catalog := domain.Catalog{}
		incoming := []domain.DependencyEntry{
			entry("lodash", "^4.17.21"),
			entry("react", "^18.2.0"),
		}

		// when: merging the same set twice
		first := domain.MergeCatalog(catalog, incoming)
		second := domain.MergeCatalog(catalog, incoming)

		// then
		assert.Len(t, first.Added, 2)
		assert.Empty(t, second.Added)
		assert.Empty(t, second.Bumped)
		assert.Len(t, second.Skipped, 2)
	})
}
