package cmd

import (
	"github.com/spf13/cobra"

	"github.com/blefnk/dler/internal"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the shared workspace dependency catalog",
}

var catalogMergeCmd = &cobra.Command{
	Use:   "merge [dir]",
	Short: "Merge workspace dependencies into the root catalog and rewrite members to catalog refs",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		root, err := targetDir(args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		service := internal.InjectCatalogService(cfg)
		_, err = service.Merge(root, dryRun)
		return err
	},
}

var catalogRestoreCmd = &cobra.Command{
	Use:   "restore [dir]",
	Short: "Replace catalog references with the concrete versions from the catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		root, err := targetDir(args)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		service := internal.InjectCatalogService(cfg)
		_, err = service.Restore(root, dryRun)
		return err
	},
}

func init() {
	catalogCmd.AddCommand(catalogMergeCmd)
	catalogCmd.AddCommand(catalogRestoreCmd)
	rootCmd.AddCommand(catalogCmd)
}
