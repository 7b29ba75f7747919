package manifest

import (
	"sort"

	"github.com/blefnk/dler/domain"
)

// Collect produces one entry per dependency name found in the manifest's
// selected sections. Sections are scanned in production-first order, and the
// first specifier seen for a name is authoritative: a package listed in both
// dependencies and devDependencies with different versions keeps the
// dependencies value while both section names are recorded in Locations.
// Catalog sections contribute under the "catalog" / "catalogs.<name>" tags.
//
// Pure function of its inputs; nothing is read from disk or the network.
func Collect(m *PackageManifest, filter domain.SectionFilter) map[string]*domain.DependencyEntry {
	entries := map[string]*domain.DependencyEntry{}

	sections := []struct {
		location string
		deps     map[string]string
	}{
		{domain.LocDependencies, m.Dependencies},
		{domain.LocDevDependencies, m.DevDependencies},
		{domain.LocPeerDependencies, m.PeerDependencies},
		{domain.LocOptionalDependencies, m.OptionalDependencies},
	}

	for _, section := range sections {
		if !filter.IncludesSection(section.location) {
			continue
		}
		for name, specifier := range section.deps {
			record(entries, m.Path, name, specifier, section.location)
		}
	}

	if filter.IncludesSection(domain.LocCatalog) {
		for name, specifier := range m.DefaultCatalog() {
			record(entries, m.Path, name, specifier, domain.LocCatalog)
		}
	}

	for catName, catalog := range m.NamedCatalogs() {
		location := domain.NamedCatalogLocation(catName)
		if !filter.IncludesSection(location) {
			continue
		}
		for name, specifier := range catalog {
			record(entries, m.Path, name, specifier, location)
		}
	}

	return entries
}

// record creates or extends the entry for a package name within one manifest.
// An existing entry keeps its specifier and only gains the new location.
func record(entries map[string]*domain.DependencyEntry, manifestPath, name, specifier, location string) {
	if entry, ok := entries[name]; ok {
		entry.AddLocation(location)
		return
	}
	entries[name] = &domain.DependencyEntry{
		Name:             name,
		VersionSpecifier: specifier,
		Locations:        []string{location},
		ManifestPath:     manifestPath,
	}
}

// SortedEntries flattens a collection map into a slice ordered by package
// name, for deterministic batch processing and reporting.
func SortedEntries(entries map[string]*domain.DependencyEntry) []domain.DependencyEntry {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	sorted := make([]domain.DependencyEntry, 0, len(names))
	for _, name := range names {
		sorted = append(sorted, *entries[name])
	}
	return sorted
}
