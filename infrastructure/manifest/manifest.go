// Package manifest reads, scans, and rewrites package.json files: dependency
// collection across standard and catalog sections, workspace discovery, and
// structure-preserving writes.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blefnk/dler/domain"
)

// FileName is the manifest file name looked up in every directory.
const FileName = "package.json"

// PackageManifest is the parsed view of a package.json. Only the sections the
// engine operates on are modeled; everything else is preserved on disk by the
// writer, which edits files surgically instead of re-marshaling this struct.
type PackageManifest struct {
	Name                 string                       `json:"name"`
	Version              string                       `json:"version"`
	Workspaces           WorkspacesField              `json:"workspaces"`
	Dependencies         map[string]string            `json:"dependencies"`
	DevDependencies      map[string]string            `json:"devDependencies"`
	PeerDependencies     map[string]string            `json:"peerDependencies"`
	OptionalDependencies map[string]string            `json:"optionalDependencies"`
	Catalog              map[string]string            `json:"catalog"`  // legacy top-level form
	Catalogs             map[string]map[string]string `json:"catalogs"` // legacy top-level form

	// Path is the file this manifest was read from.
	Path string `json:"-"`
}

// WorkspacesField accepts both declaration forms:
//
//	"workspaces": ["packages/*"]
//	"workspaces": {"packages": [...], "catalog": {...}, "catalogs": {...}}
type WorkspacesField struct {
	Packages []string
	Catalog  map[string]string
	Catalogs map[string]map[string]string
}

func (w *WorkspacesField) UnmarshalJSON(data []byte) error {
	var globs []string
	if err := json.Unmarshal(data, &globs); err == nil {
		w.Packages = globs
		return nil
	}

	var obj struct {
		Packages []string                     `json:"packages"`
		Catalog  map[string]string            `json:"catalog"`
		Catalogs map[string]map[string]string `json:"catalogs"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("failed to parse workspaces field: %w", err)
	}

	w.Packages = obj.Packages
	w.Catalog = obj.Catalog
	w.Catalogs = obj.Catalogs
	return nil
}

// Load reads and parses the manifest at the given path. Manifests are always
// read fresh; nothing is cached between operations.
func Load(path string) (*PackageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	var m PackageManifest
	if unmarshalErr := json.Unmarshal(data, &m); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", path, unmarshalErr)
	}

	m.Path = path
	return &m, nil
}

// WorkspacePatterns returns the declared workspace glob patterns, from either
// declaration form.
func (m *PackageManifest) WorkspacePatterns() []string {
	return m.Workspaces.Packages
}

// DefaultCatalog returns the workspace's default catalog as a mutable copy.
// The workspaces.catalog form takes precedence over the legacy top-level
// catalog for keys present in both.
func (m *PackageManifest) DefaultCatalog() domain.Catalog {
	catalog := domain.Catalog{}
	for name, version := range m.Catalog {
		catalog[name] = version
	}
	for name, version := range m.Workspaces.Catalog {
		catalog[name] = version
	}
	return catalog
}

// NamedCatalogs returns all named catalogs, merging the legacy top-level form
// under the workspaces form.
func (m *PackageManifest) NamedCatalogs() map[string]domain.Catalog {
	named := map[string]domain.Catalog{}
	for catName, entries := range m.Catalogs {
		catalog := domain.Catalog{}
		for name, version := range entries {
			catalog[name] = version
		}
		named[catName] = catalog
	}
	for catName, entries := range m.Workspaces.Catalogs {
		catalog, ok := named[catName]
		if !ok {
			catalog = domain.Catalog{}
			named[catName] = catalog
		}
		for name, version := range entries {
			catalog[name] = version
		}
	}
	return named
}

// HasCatalog reports whether the manifest declares any catalog entries, in
// either the workspaces or the legacy top-level form.
func (m *PackageManifest) HasCatalog() bool {
	return len(m.Workspaces.Catalog) > 0 || len(m.Catalog) > 0 ||
		len(m.Workspaces.Catalogs) > 0 || len(m.Catalogs) > 0
}
