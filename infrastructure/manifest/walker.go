package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-zglob"
	logger "github.com/sirupsen/logrus"
)

// Directories never descended into or matched during discovery.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"coverage":     true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	".next":        true,
	".turbo":       true,
	".output":      true,
}

// FindWorkspaceManifests discovers member manifests by trusting the workspace
// glob patterns declared in the root manifest. The root manifest itself is
// not included. Paths that no longer exist at listing time are filtered out,
// which defends against stale glob results.
func FindWorkspaceManifests(root string) ([]string, error) {
	rootManifest, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}

	patterns := rootManifest.WorkspacePatterns()
	if len(patterns) == 0 {
		return nil, nil
	}

	seen := map[string]bool{}
	var paths []string

	for _, pattern := range patterns {
		matches, globErr := zglob.Glob(filepath.Join(root, pattern, FileName))
		if globErr != nil {
			logger.Warnf("Workspace pattern %q failed to expand: %v", pattern, globErr)
			continue
		}

		for _, match := range matches {
			if seen[match] || ignoredPath(match) {
				continue
			}
			if _, statErr := os.Stat(match); statErr != nil {
				continue
			}
			seen[match] = true
			paths = append(paths, match)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// FindAllManifests walks the whole tree under root, ignoring declared
// workspace patterns, and returns every package.json outside of build output
// and VCS directories. The root manifest is included when present.
func FindAllManifests(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warnf("Skipping unreadable path %q: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && ignoredDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Name() == FileName {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// ignoredPath reports whether any path segment is an ignored directory.
// Glob patterns like "packages/*" can still reach into node_modules when the
// layout nests workspaces.
func ignoredPath(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if ignoredDirs[segment] {
			return true
		}
	}
	return false
}
