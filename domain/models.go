package domain

import "strings"

// Manifest section names used as location tags on dependency entries.
const (
	LocDependencies         = "dependencies"
	LocDevDependencies      = "devDependencies"
	LocPeerDependencies     = "peerDependencies"
	LocOptionalDependencies = "optionalDependencies"
	LocCatalog              = "catalog"
)

// NamedCatalogLocation returns the location tag for a named catalog section,
// e.g. "catalogs.react17".
func NamedCatalogLocation(name string) string {
	return "catalogs." + name
}

// DependencyEntry represents a single dependency found in one manifest.
// Identity is (Name, ManifestPath); when the same package appears in several
// sections of the same manifest the entry carries all section names in
// Locations, with the production version winning over dev when they differ.
type DependencyEntry struct {
	Name             string
	VersionSpecifier string
	Locations        []string // manifest section names, in collection order
	ManifestPath     string
	PreviousVersion  string // set by the catalog merge engine on bumps
}

// HasLocation reports whether the entry was seen in the given section.
func (e *DependencyEntry) HasLocation(loc string) bool {
	for _, l := range e.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// AddLocation appends a section name, keeping Locations duplicate-free.
func (e *DependencyEntry) AddLocation(loc string) {
	if !e.HasLocation(loc) {
		e.Locations = append(e.Locations, loc)
	}
}

// LocationString joins all locations for display and for UpdateResult.Location.
func (e *DependencyEntry) LocationString() string {
	return strings.Join(e.Locations, ", ")
}

// UpdateResult is the outcome of checking one dependency against the registry.
// Immutable after creation; callers must check Error before trusting WasUpdated.
type UpdateResult struct {
	PackageName        string
	CurrentVersion     string
	LatestVersion      string
	WasUpdated         bool
	Error              string
	IsSemverCompatible bool
	Location           string
}

// CatalogMergeResult categorizes the outcome of merging collected entries into
// a workspace catalog. The mutated catalog itself is persisted by the caller.
type CatalogMergeResult struct {
	Added   []DependencyEntry
	Bumped  []DependencyEntry // each carries PreviousVersion
	Skipped []DependencyEntry
}

// SectionFilter selects which manifest sections a collection pass includes.
// The *Only flags are mutually exclusive; the zero value means "all sections".
type SectionFilter struct {
	ProdOnly     bool
	DevOnly      bool
	PeerOnly     bool
	OptionalOnly bool
	CatalogsOnly bool
}

// Validate rejects conflicting exclusive flags. It is a pure function; the
// CLI entry point is responsible for turning the error into a non-zero exit.
func (f SectionFilter) Validate() error {
	count := 0
	for _, set := range []bool{f.ProdOnly, f.DevOnly, f.PeerOnly, f.OptionalOnly, f.CatalogsOnly} {
		if set {
			count++
		}
	}
	if count > 1 {
		return ErrConflictingSectionFlags
	}
	return nil
}

// IncludesSection reports whether the given manifest section is selected.
// Catalog sections are matched by the LocCatalog tag and the "catalogs."
// prefix for named catalogs.
func (f SectionFilter) IncludesSection(section string) bool {
	isCatalog := section == LocCatalog || strings.HasPrefix(section, "catalogs.")

	switch {
	case f.ProdOnly:
		return section == LocDependencies
	case f.DevOnly:
		return section == LocDevDependencies
	case f.PeerOnly:
		return section == LocPeerDependencies
	case f.OptionalOnly:
		return section == LocOptionalDependencies
	case f.CatalogsOnly:
		return isCatalog
	default:
		return true
	}
}
