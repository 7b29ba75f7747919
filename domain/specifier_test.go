package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blefnk/dler/domain"
)

func TestIsUpdateCandidate(t *testing.T) {
	t.Parallel()

	t.Run("should reject every opaque specifier prefix", func(t *testing.T) {
		t.Parallel()

		// given
		opaque := []string{
			"npm:lodash@^4.0.0",
			"workspace:*",
			"workspace:^1.0.0",
			"catalog:",
			"catalog:react17",
			"git+https://github.com/org/repo.git",
			"file:../local-pkg",
			"link:../local-pkg",
			"http://example.com/pkg.tgz",
			"https://example.com/pkg.tgz",
		}

		for _, specifier := range opaque {
			// when / then
			assert.False(t, domain.IsUpdateCandidate(specifier), specifier)
		}
	})

	t.Run("should accept exact and range specifiers", func(t *testing.T) {
		t.Parallel()

		// given
		candidates := []string{"1.2.3", "^1.2.3", "~0.4.0", "2.0.0-beta.1"}

		for _, specifier := range candidates {
			// when / then
			assert.True(t, domain.IsUpdateCandidate(specifier), specifier)
		}
	})

	t.Run("should reject empty specifier", func(t *testing.T) {
		t.Parallel()

		assert.False(t, domain.IsUpdateCandidate(""))
	})
}

func TestIsExact(t *testing.T) {
	t.Parallel()

	t.Run("should treat unprefixed version as exact", func(t *testing.T) {
		t.Parallel()

		assert.True(t, domain.IsExact("1.2.3"))
	})

	t.Run("should treat caret and tilde as not exact", func(t *testing.T) {
		t.Parallel()

		assert.False(t, domain.IsExact("^1.2.3"))
		assert.False(t, domain.IsExact("~1.2.3"))
	})
}

func TestStripRangePrefix(t *testing.T) {
	t.Parallel()

	t.Run("should strip leading caret and tilde", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "1.2.3", domain.StripRangePrefix("^1.2.3"))
		assert.Equal(t, "1.2.3", domain.StripRangePrefix("~1.2.3"))
		assert.Equal(t, "1.2.3", domain.StripRangePrefix("1.2.3"))
	})
}

func TestCatalogRefName(t *testing.T) {
	t.Parallel()

	t.Run("should return empty name for default catalog ref", func(t *testing.T) {
		t.Parallel()

		// when
		name, ok := domain.CatalogRefName("catalog:")

		// then
		assert.True(t, ok)
		assert.Empty(t, name)
	})

	t.Run("should return named catalog ref", func(t *testing.T) {
		t.Parallel()

		// when
		name, ok := domain.CatalogRefName("catalog:react17")

		// then
		assert.True(t, ok)
		assert.Equal(t, "react17", name)
	})

	t.Run("should reject non-catalog specifier", func(t *testing.T) {
		t.Parallel()

		// when
		_, ok := domain.CatalogRefName("^1.0.0")

		// then
		assert.False(t, ok)
	})
}

func TestSectionFilter(t *testing.T) {
	t.Parallel()

	t.Run("should pass validation with no exclusive flag", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, domain.SectionFilter{}.Validate())
	})

	t.Run("should pass validation with one exclusive flag", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, domain.SectionFilter{DevOnly: true}.Validate())
	})

	t.Run("should fail validation with conflicting flags", func(t *testing.T) {
		t.Parallel()

		// given
		filter := domain.SectionFilter{DevOnly: true, ProdOnly: true}

		// when
		err := filter.Validate()

		// then
		assert.ErrorIs(t, err, domain.ErrConflictingSectionFlags)
	})

	t.Run("should include every section by default", func(t *testing.T) {
		t.Parallel()

		// given
		filter := domain.SectionFilter{}

		// then
		assert.True(t, filter.IncludesSection(domain.LocDependencies))
		assert.True(t, filter.IncludesSection(domain.LocDevDependencies))
		assert.True(t, filter.IncludesSection(domain.LocCatalog))
		assert.True(t, filter.IncludesSection(domain.NamedCatalogLocation("react17")))
	})

	t.Run("should only include catalogs in catalogs-only mode", func(t *testing.T) {
		t.Parallel()

		// given
		filter := domain.SectionFilter{CatalogsOnly: true}

		// then
		assert.False(t, filter.IncludesSection(domain.LocDependencies))
		assert.True(t, filter.IncludesSection(domain.LocCatalog))
		assert.True(t, filter.IncludesSection(domain.NamedCatalogLocation("react17")))
	})

	t.Run("should only include dependencies in prod-only mode", func(t *testing.T) {
		t.Parallel()

		// given
		filter := domain.SectionFilter{ProdOnly: true}

		// then
		assert.True(t, filter.IncludesSection(domain.LocDependencies))
		assert.False(t, filter.IncludesSection(domain.LocDevDependencies))
		assert.False(t, filter.IncludesSection(domain.LocCatalog))
	})
}
