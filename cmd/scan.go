package cmd

import (
	"fmt"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blefnk/dler/domain"
	"github.com/blefnk/dler/infrastructure/manifest"
)

var scanRecursive bool

var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "List workspace manifests and their dependency counts without touching the network",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runScan,
}

func init() {
	scanCmd.Flags().BoolVarP(&scanRecursive, "recursive", "r", false, "Walk the whole tree instead of trusting workspace globs")
	rootCmd.AddCommand(scanCmd)
}

func runScan(_ *cobra.Command, args []string) error {
	root, err := targetDir(args)
	if err != nil {
		return err
	}

	rootPath := filepath.Join(root, manifest.FileName)

	var paths []string
	if scanRecursive {
		paths, err = manifest.FindAllManifests(root)
	} else {
		var members []string
		members, err = manifest.FindWorkspaceManifests(root)
		paths = append([]string{rootPath}, members...)
	}
	if err != nil {
		return err
	}

	for _, path := range paths {
		m, loadErr := manifest.Load(path)
		if loadErr != nil {
			logger.Warnf("Skipping manifest: %v", loadErr)
			continue
		}

		entries := manifest.Collect(m, domain.SectionFilter{})
		candidates := 0
		catalogRefs := 0
		for _, entry := range entries {
			if domain.IsUpdateCandidate(entry.VersionSpecifier) {
				candidates++
			}
			if _, isRef := domain.CatalogRefName(entry.VersionSpecifier); isRef {
				catalogRefs++
			}
		}

		name := m.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Printf(
			"%s  %s: %d dependencies, %d update candidates, %d catalog refs\n",
			path, name, len(entries), candidates, catalogRefs,
		)
	}

	return nil
}
