package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blefnk/dler/config"
)

var (
	// Global flags
	configPath string
	dryRun     bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "dler",
	Short: "Dependency update and workspace catalog manager for npm manifests",
	Long: `A CLI tool that checks the dependencies of package.json manifests against
the registry, applies version updates, and manages shared workspace catalogs.

It helps keep a monorepo consistent by:
- Discovering every manifest in a workspace
- Checking each dependency against the latest published version
- Rewriting only the fields that actually changed
- Migrating duplicated versions into a shared catalog`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the configuration file (default: search standard locations)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Report what would be done without writing any file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// loadConfig returns the configuration from --config, from the first file
// found in the standard locations, or the built-in defaults when no file
// exists.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	found, err := config.FindConfigFile()
	if err != nil {
		logger.Debug("No config file found, using defaults")
		return config.Default(), nil
	}

	logger.Debugf("Using config file %q", found)
	return config.Load(found)
}
