package manifest

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/blefnk/dler/domain"
)

const manifestFileMode = 0o644

// PlannedWrite pairs a collected entry with the specifier to write back.
type PlannedWrite struct {
	Entry        domain.DependencyEntry
	NewSpecifier string
}

// CatalogSet bundles a workspace's default and named catalogs for restore
// lookups.
type CatalogSet struct {
	Default domain.Catalog
	Named   map[string]domain.Catalog
}

// Lookup resolves a catalog reference name ("" for the default catalog) and a
// package name to the concrete version recorded in the catalog.
func (s CatalogSet) Lookup(refName, pkg string) (string, bool) {
	catalog := s.Default
	if refName != "" {
		catalog = s.Named[refName]
	}
	version, ok := catalog[pkg]
	return version, ok
}

// Empty reports whether no catalog entries exist at all.
func (s CatalogSet) Empty() bool {
	if len(s.Default) > 0 {
		return false
	}
	for _, catalog := range s.Named {
		if len(catalog) > 0 {
			return false
		}
	}
	return true
}

// ApplyUpdates rewrites the specifier of each planned entry in every section
// it was collected from, editing only those keys so key order and surrounding
// structure survive. The file is written back (with a trailing newline) only
// when at least one field actually changed. Returns the number of fields
// written.
func ApplyUpdates(path string, writes []PlannedWrite) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	original := data
	fields := 0

	for _, write := range writes {
		for _, location := range write.Entry.Locations {
			keyPath := sectionKeyPath(data, location, write.Entry.Name)

			current := gjson.GetBytes(data, keyPath)
			if !current.Exists() || current.String() == write.NewSpecifier {
				continue
			}

			data, err = sjson.SetBytes(data, keyPath, write.NewSpecifier)
			if err != nil {
				return fields, fmt.Errorf("failed to set %s in %q: %w", keyPath, path, err)
			}
			fields++
		}
	}

	if fields == 0 {
		return 0, nil
	}

	if writeErr := writeIfChanged(path, original, data); writeErr != nil {
		return 0, writeErr
	}
	return fields, nil
}

// ReplaceWithCatalogRefs swaps the concrete specifier of each entry for a
// "catalog:" reference in every dependency section it appears in. Catalog
// sections themselves are never rewritten. Returns the number of specifiers
// replaced.
func ReplaceWithCatalogRefs(path string, entries []domain.DependencyEntry) (int, error) {
	writes := make([]PlannedWrite, 0, len(entries))
	for _, entry := range entries {
		depEntry := entry
		depEntry.Locations = dependencyLocations(entry.Locations)
		if len(depEntry.Locations) == 0 {
			continue
		}
		writes = append(writes, PlannedWrite{Entry: depEntry, NewSpecifier: "catalog:"})
	}
	return ApplyUpdates(path, writes)
}

// RestoreFromCatalogRefs replaces every "catalog:" / "catalog:<name>"
// specifier in the manifest's dependency sections with the concrete version
// from the matching catalog. A reference with no catalog entry is logged as a
// warning and left untouched; it never fails the operation. Returns the
// number of specifiers restored.
func RestoreFromCatalogRefs(path string, catalogs CatalogSet) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	original := data
	restored := 0

	for _, section := range dependencySections {
		sectionValue := gjson.GetBytes(data, section)
		if !sectionValue.IsObject() {
			continue
		}

		for pkg, specifier := range sectionValue.Map() {
			refName, isRef := domain.CatalogRefName(specifier.String())
			if !isRef {
				continue
			}

			version, found := catalogs.Lookup(refName, pkg)
			if !found {
				logger.Warnf(
					"No catalog entry for %q referenced in %s of %s; leaving specifier untouched",
					pkg, section, path,
				)
				continue
			}

			keyPath := section + "." + escapeKey(pkg)
			data, err = sjson.SetBytes(data, keyPath, version)
			if err != nil {
				return restored, fmt.Errorf("failed to set %s in %q: %w", keyPath, path, err)
			}
			restored++
		}
	}

	if restored == 0 {
		return 0, nil
	}

	if writeErr := writeIfChanged(path, original, data); writeErr != nil {
		return 0, writeErr
	}
	return restored, nil
}

// WriteCatalog persists the catalog map into the workspace root manifest,
// targeting whichever catalog location the file already uses (defaulting to
// workspaces.catalog). Keys are written in sorted order so repeated merges
// produce identical files. Returns the number of entries written.
func WriteCatalog(path string, catalog domain.Catalog) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	original := data
	base := catalogBasePath(data)

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, name := range names {
		keyPath := base + "." + escapeKey(name)
		if gjson.GetBytes(data, keyPath).String() == catalog[name] {
			continue
		}
		data, err = sjson.SetBytes(data, keyPath, catalog[name])
		if err != nil {
			return written, fmt.Errorf("failed to set %s in %q: %w", keyPath, path, err)
		}
		written++
	}

	if written == 0 {
		return 0, nil
	}

	if writeErr := writeIfChanged(path, original, data); writeErr != nil {
		return 0, writeErr
	}
	return written, nil
}

// --- internals ---

var dependencySections = []string{
	domain.LocDependencies,
	domain.LocDevDependencies,
	domain.LocPeerDependencies,
	domain.LocOptionalDependencies,
}

// dependencyLocations filters out catalog locations, keeping only the
// standard dependency sections.
func dependencyLocations(locations []string) []string {
	var deps []string
	for _, loc := range locations {
		for _, section := range dependencySections {
			if loc == section {
				deps = append(deps, loc)
			}
		}
	}
	return deps
}

// sectionKeyPath maps a location tag to the gjson/sjson path of the package
// key, resolving whether catalog entries live under workspaces or at the
// legacy top level in this particular file.
func sectionKeyPath(data []byte, location, pkg string) string {
	switch {
	case location == domain.LocCatalog:
		base := "catalog"
		if gjson.GetBytes(data, "workspaces.catalog").Exists() {
			base = "workspaces.catalog"
		}
		return base + "." + escapeKey(pkg)

	case strings.HasPrefix(location, "catalogs."):
		catName := strings.TrimPrefix(location, "catalogs.")
		base := "catalogs." + escapeKey(catName)
		if gjson.GetBytes(data, "workspaces.catalogs").Exists() {
			base = "workspaces.catalogs." + escapeKey(catName)
		}
		return base + "." + escapeKey(pkg)

	default:
		return location + "." + escapeKey(pkg)
	}
}

// catalogBasePath picks where the default catalog lives in the given file.
// An existing location wins; otherwise new entries go under workspaces.catalog.
func catalogBasePath(data []byte) string {
	if gjson.GetBytes(data, "workspaces.catalog").Exists() {
		return "workspaces.catalog"
	}
	if gjson.GetBytes(data, "catalog").Exists() {
		return "catalog"
	}
	return "workspaces.catalog"
}

// escapeKey escapes gjson path metacharacters so package names like
// "@types/node" or "lodash.merge" address literal keys.
var keyEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
)

func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}

// writeIfChanged overwrites the manifest only when the content differs,
// normalizing to a single trailing newline.
func writeIfChanged(path string, original, updated []byte) error {
	updated = append(bytes.TrimRight(updated, "\n"), '\n')
	if bytes.Equal(original, updated) {
		return nil
	}
	if err := os.WriteFile(path, updated, manifestFileMode); err != nil {
		return fmt.Errorf("failed to write manifest %q: %w", path, err)
	}
	return nil
}
