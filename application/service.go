// Package application orchestrates the update pipeline: workspace discovery,
// dependency collection, registry resolution, planning, and manifest writes.
package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/blefnk/dler/domain"
	"github.com/blefnk/dler/infrastructure/manifest"
)

// DefaultConcurrency bounds simultaneous registry lookups when the caller
// does not configure a limit.
const DefaultConcurrency = 5

// UpdateService runs dependency checks and applies updates across a
// workspace.
type UpdateService struct {
	resolver domain.Resolver
}

// NewUpdateService creates a service backed by the given registry resolver.
func NewUpdateService(resolver domain.Resolver) *UpdateService {
	return &UpdateService{resolver: resolver}
}

// CheckOptions holds runtime options for a single update run.
type CheckOptions struct {
	Filter      domain.SectionFilter
	AllowMajor  bool
	SavePrefix  string
	Concurrency int
	DryRun      bool
	Recursive   bool // walk the whole tree instead of trusting workspace globs
	Ignore      []string

	// Confirm, when set, is asked before each proposed update is applied.
	// Used by interactive mode; nil accepts everything.
	Confirm func(domain.UpdateResult) bool
}

// RunSummary aggregates the outcome of one update run.
type RunSummary struct {
	Manifests     int
	Checked       int
	Updated       int
	FieldsWritten int
	Errors        int
	Results       []domain.UpdateResult
}

// Run checks every selected dependency of every target manifest against the
// registry and writes the planned updates back, unless DryRun is set.
//
// Per-package resolution failures are recorded in the results and counted,
// never fatal to the batch; unreadable manifests are warned about and
// skipped. Only missing-root-manifest is a precondition error.
func (s *UpdateService) Run(ctx context.Context, root string, opts CheckOptions) (*RunSummary, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	rootPath := filepath.Join(root, manifest.FileName)
	if _, err := os.Stat(rootPath); err != nil {
		return nil, fmt.Errorf("no manifest found in %q: %w", root, err)
	}

	paths, err := s.targetManifests(root, rootPath, opts.Recursive)
	if err != nil {
		return nil, err
	}

	ignored := map[string]bool{}
	for _, name := range opts.Ignore {
		ignored[name] = true
	}

	planOpts := domain.PlanOptions{AllowMajor: opts.AllowMajor, SavePrefix: opts.SavePrefix}
	summary := &RunSummary{}
	candidatesSeen := 0

	for _, path := range paths {
		m, loadErr := manifest.Load(path)
		if loadErr != nil {
			logger.Warnf("Skipping manifest: %v", loadErr)
			summary.Errors++
			continue
		}
		summary.Manifests++

		var candidates []domain.DependencyEntry
		for _, entry := range manifest.SortedEntries(manifest.Collect(m, opts.Filter)) {
			if !domain.IsUpdateCandidate(entry.VersionSpecifier) {
				continue
			}
			if ignored[entry.Name] {
				logger.Debugf("Ignoring %q (configured ignore list)", entry.Name)
				continue
			}
			candidates = append(candidates, entry)
		}
		if len(candidates) == 0 {
			continue
		}
		candidatesSeen += len(candidates)

		results := s.checkAll(ctx, candidates, planOpts, opts.Concurrency)
		summary.Checked += len(results)
		summary.Results = append(summary.Results, results...)

		var writes []manifest.PlannedWrite
		for i, result := range results {
			switch {
			case result.Error != "":
				logger.Warnf("Failed to resolve %q: %s", result.PackageName, result.Error)
				summary.Errors++
			case !result.WasUpdated:
				logger.Debugf(
					"%s is up to date (%s)", result.PackageName, result.CurrentVersion,
				)
			case opts.Confirm != nil && !opts.Confirm(result):
				logger.Infof("Skipped %s (declined)", result.PackageName)
			default:
				summary.Updated++
				newSpecifier := domain.NewSpecifier(result.LatestVersion, opts.SavePrefix)
				logger.Infof(
					"%s: %s -> %s (%s)",
					result.PackageName, candidates[i].VersionSpecifier, newSpecifier, result.Location,
				)
				writes = append(writes, manifest.PlannedWrite{
					Entry:        candidates[i],
					NewSpecifier: newSpecifier,
				})
			}
		}

		if opts.DryRun || len(writes) == 0 {
			continue
		}

		fields, writeErr := manifest.ApplyUpdates(path, writes)
		if writeErr != nil {
			logger.Warnf("Failed to update %q: %v", path, writeErr)
			summary.Errors++
			continue
		}
		summary.FieldsWritten += fields
	}

	if opts.Filter.CatalogsOnly && candidatesSeen == 0 {
		logger.Infof("No catalog found in %q; nothing to update", root)
	}

	logger.Infof(
		"Run complete: %d manifests, %d dependencies checked, %d updates, %d fields written, %d errors",
		summary.Manifests, summary.Checked, summary.Updated, summary.FieldsWritten, summary.Errors,
	)
	return summary, nil
}

// targetManifests returns the root manifest plus workspace members, or the
// result of a full tree walk in recursive mode, deduplicated in order.
func (s *UpdateService) targetManifests(root, rootPath string, recursive bool) ([]string, error) {
	var discovered []string
	var err error

	if recursive {
		discovered, err = manifest.FindAllManifests(root)
	} else {
		discovered, err = manifest.FindWorkspaceManifests(root)
	}
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{rootPath: true}
	paths := []string{rootPath}
	for _, path := range discovered {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// checkAll resolves and plans every candidate through a bounded fan-out.
// Workers never return errors; per-item failures are captured in the result
// slots so one bad package cannot abort the batch.
func (s *UpdateService) checkAll(
	ctx context.Context,
	entries []domain.DependencyEntry,
	planOpts domain.PlanOptions,
	concurrency int,
) []domain.UpdateResult {
	results := make([]domain.UpdateResult, len(entries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(concurrency)

	for i, entry := range entries {
		i, entry := i, entry
		group.Go(func() error {
			latest, err := s.resolver.Latest(groupCtx, entry.Name)

			var result domain.UpdateResult
			if err != nil {
				result = domain.FailedUpdate(entry.Name, entry.VersionSpecifier, err)
			} else {
				result = domain.PlanUpdate(entry.Name, entry.VersionSpecifier, latest, planOpts)
			}
			result.Location = entry.LocationString()
			results[i] = result
			return nil
		})
	}

	_ = group.Wait() // workers always return nil
	return results
}
