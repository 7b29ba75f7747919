package application

import (
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/blefnk/dler/domain"
	"github.com/blefnk/dler/infrastructure/manifest"
)

// CatalogService migrates workspace dependencies into a shared catalog and
// restores them back to concrete versions.
type CatalogService struct{}

// NewCatalogService creates a catalog service.
func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

// MergeSummary reports the outcome of a catalog merge run.
type MergeSummary struct {
	Merge                 domain.CatalogMergeResult
	CatalogEntriesWritten int
	SpecifiersReplaced    int
}

// Merge collects the dependencies of every workspace member, folds them into
// the root catalog (never lowering an existing entry), writes the catalog
// back, and rewrites member manifests to "catalog:" references.
//
// Requires a workspace configuration; a root manifest without workspace
// members is a precondition error.
func (s *CatalogService) Merge(root string, dryRun bool) (*MergeSummary, error) {
	rootPath := filepath.Join(root, manifest.FileName)
	rootManifest, err := manifest.Load(rootPath)
	if err != nil {
		return nil, err
	}

	members, err := manifest.FindWorkspaceManifests(root)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("no workspace configuration found in %q", rootPath)
	}

	catalog := rootManifest.DefaultCatalog()

	perManifest := map[string][]domain.DependencyEntry{}
	var incoming []domain.DependencyEntry

	for _, path := range members {
		m, loadErr := manifest.Load(path)
		if loadErr != nil {
			logger.Warnf("Skipping manifest: %v", loadErr)
			continue
		}

		for _, entry := range manifest.SortedEntries(manifest.Collect(m, domain.SectionFilter{})) {
			// Opaque specifiers — including existing catalog: references —
			// have no concrete version to contribute.
			if !domain.IsUpdateCandidate(entry.VersionSpecifier) {
				continue
			}
			incoming = append(incoming, entry)
			perManifest[path] = append(perManifest[path], entry)
		}
	}

	summary := &MergeSummary{Merge: domain.MergeCatalog(catalog, incoming)}
	logger.Infof(
		"Catalog merge: %d added, %d bumped, %d skipped",
		len(summary.Merge.Added), len(summary.Merge.Bumped), len(summary.Merge.Skipped),
	)
	for _, entry := range summary.Merge.Bumped {
		logger.Infof("  %s: %s -> %s", entry.Name, entry.PreviousVersion, entry.VersionSpecifier)
	}

	if dryRun {
		logger.Info("[dry run] No files written")
		return summary, nil
	}

	written, writeErr := manifest.WriteCatalog(rootPath, catalog)
	if writeErr != nil {
		return summary, writeErr
	}
	summary.CatalogEntriesWritten = written

	for _, path := range members {
		entries, ok := perManifest[path]
		if !ok {
			continue
		}
		replaced, replaceErr := manifest.ReplaceWithCatalogRefs(path, entries)
		if replaceErr != nil {
			logger.Warnf("Failed to rewrite %q: %v", path, replaceErr)
			continue
		}
		summary.SpecifiersReplaced += replaced
	}

	logger.Infof(
		"Catalog updated: %d entries written, %d specifiers replaced with catalog refs",
		summary.CatalogEntriesWritten, summary.SpecifiersReplaced,
	)
	return summary, nil
}

// Restore replaces catalog references in the root and member manifests with
// the concrete versions recorded in the workspace catalogs. A workspace
// without any catalog is not an error; there is simply nothing to restore.
func (s *CatalogService) Restore(root string, dryRun bool) (int, error) {
	rootPath := filepath.Join(root, manifest.FileName)
	rootManifest, err := manifest.Load(rootPath)
	if err != nil {
		return 0, err
	}

	catalogs := manifest.CatalogSet{
		Default: rootManifest.DefaultCatalog(),
		Named:   rootManifest.NamedCatalogs(),
	}
	if catalogs.Empty() {
		logger.Infof("No catalog found in %q; nothing to restore", root)
		return 0, nil
	}

	members, err := manifest.FindWorkspaceManifests(root)
	if err != nil {
		return 0, err
	}
	paths := append([]string{rootPath}, members...)

	if dryRun {
		count := s.countCatalogRefs(paths)
		logger.Infof("[dry run] Would restore %d catalog references", count)
		return count, nil
	}

	total := 0
	for _, path := range paths {
		restored, restoreErr := manifest.RestoreFromCatalogRefs(path, catalogs)
		if restoreErr != nil {
			logger.Warnf("Failed to restore %q: %v", path, restoreErr)
			continue
		}
		total += restored
	}

	logger.Infof("Restored %d catalog references", total)
	return total, nil
}

// countCatalogRefs counts catalog references across manifests without
// touching the files.
func (s *CatalogService) countCatalogRefs(paths []string) int {
	count := 0
	for _, path := range paths {
		m, err := manifest.Load(path)
		if err != nil {
			continue
		}
		for _, entry := range manifest.Collect(m, domain.SectionFilter{}) {
			if _, isRef := domain.CatalogRefName(entry.VersionSpecifier); isRef {
				count++
			}
		}
	}
	return count
}
