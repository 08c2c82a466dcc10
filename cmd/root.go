package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	configPath string
	token      string
	dryRun     bool
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "specwatch",
	Short: "Regenerates API client specs against upstream CLI releases",
	Long: `A build-automation tool that watches the releases of an upstream CLI
tool, regenerates API client specifications against new releases, compiles
and packages the plugin project, optionally pushes the artifact to a
package feed, and opens a pull request with the regenerated code.

Intended to run from a cronjob or CI schedule:
  specwatch check   Report whether regeneration is needed and the version bump
  specwatch run     Execute the full regeneration pipeline`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "",
		"Auth token for GitHub (overrides the configured upstream.token)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
}

// loadConfig locates and loads the configuration, applying CLI overrides.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create specwatch.yaml",
				err,
			)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if token != "" {
		cfg.Upstream.Token = token
	}

	return cfg, nil
}
