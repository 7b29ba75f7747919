package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blefnk/dler/application"
	"github.com/blefnk/dler/config"
	"github.com/blefnk/dler/domain"
	"github.com/blefnk/dler/infrastructure/vcs"
	"github.com/blefnk/dler/internal"
)

var (
	prodOnly     bool
	devOnly      bool
	peerOnly     bool
	optionalOnly bool
	catalogsOnly bool
	interactive  bool
	recursive    bool
	force        bool
	concurrency  int
	allowMajor   bool
	savePrefix   string
)

var updateCmd = &cobra.Command{
	Use:   "update [dir]",
	Short: "Check dependencies against the registry and apply updates",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&prodOnly, "prod-only", false, "Only check the dependencies section")
	updateCmd.Flags().BoolVar(&devOnly, "dev-only", false, "Only check the devDependencies section")
	updateCmd.Flags().BoolVar(&peerOnly, "peer-only", false, "Only check the peerDependencies section")
	updateCmd.Flags().BoolVar(&optionalOnly, "optional-only", false, "Only check the optionalDependencies section")
	updateCmd.Flags().BoolVar(&catalogsOnly, "catalogs-only", false, "Only check workspace catalog entries")
	updateCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Confirm each update before applying it")
	updateCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Walk the whole tree instead of trusting workspace globs")
	updateCmd.Flags().BoolVarP(&force, "force", "f", false, "Write updates even when the git working tree is dirty")
	updateCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Maximum simultaneous registry lookups (default from config)")
	updateCmd.Flags().BoolVar(&allowMajor, "allow-major", true, "Propose updates across major version boundaries")
	updateCmd.Flags().StringVar(&savePrefix, "save-prefix", "", "Prefix for written specifiers: ^, ~, or exact (default from config)")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	root, err := targetDir(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	filter := domain.SectionFilter{
		ProdOnly:     prodOnly,
		DevOnly:      devOnly,
		PeerOnly:     peerOnly,
		OptionalOnly: optionalOnly,
		CatalogsOnly: catalogsOnly,
	}
	if validateErr := filter.Validate(); validateErr != nil {
		return validateErr
	}

	opts, err := buildCheckOptions(cmd, cfg, filter)
	if err != nil {
		return err
	}

	if !dryRun && !force {
		clean, cleanErr := vcs.IsClean(root)
		if cleanErr != nil {
			return cleanErr
		}
		if !clean {
			return fmt.Errorf(
				"working tree at %q has uncommitted changes; commit them or pass --force", root,
			)
		}
	}

	service := internal.InjectUpdateService(cfg)
	_, err = service.Run(context.Background(), root, opts)
	return err
}

// buildCheckOptions merges config defaults with per-run flag overrides.
// A flag only wins over the config value when it was set explicitly.
func buildCheckOptions(
	cmd *cobra.Command,
	cfg *config.Config,
	filter domain.SectionFilter,
) (application.CheckOptions, error) {
	opts := application.CheckOptions{
		Filter:      filter,
		AllowMajor:  cfg.Update.AllowMajor,
		Concurrency: cfg.Update.Concurrency,
		DryRun:      dryRun,
		Recursive:   recursive,
		Ignore:      cfg.Ignore,
	}

	if cmd.Flags().Changed("allow-major") {
		opts.AllowMajor = allowMajor
	}
	if cmd.Flags().Changed("concurrency") {
		opts.Concurrency = concurrency
	}

	prefix := cfg.Update.SavePrefix
	if cmd.Flags().Changed("save-prefix") {
		prefix = savePrefix
	}
	normalized, err := config.NormalizeSavePrefix(prefix)
	if err != nil {
		return opts, err
	}
	opts.SavePrefix = normalized

	if interactive {
		opts.Confirm = promptConfirm
	}
	return opts, nil
}

// targetDir resolves the optional positional directory argument.
func targetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return abs, nil
}

// promptConfirm asks on stdin whether a proposed update should be applied.
func promptConfirm(result domain.UpdateResult) bool {
	fmt.Printf(
		"Update %s from %s to %s (%s)? [y/N] ",
		result.PackageName, result.CurrentVersion, result.LatestVersion, result.Location,
	)

	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		logger.Warnf("Failed to read answer: %v", err)
		return false
	}

	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
