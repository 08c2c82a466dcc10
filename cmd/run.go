package cmd

import (
	"context"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/domain"
	"github.com/specwatch/specwatch/infrastructure/gitrepo"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var repoDir string

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full regeneration pipeline",
	Long: `Check for a new upstream release and, when one is available, download
the tool package, regenerate the API client specifications, build and
package the plugin, push the artifact to the package feed, and open a
pull request with the regenerated code.

This is the main command intended to be used in a cronjob.`,
	RunE: runPipeline,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	runCmd.Flags().StringVar(&repoDir, "repo-dir", ".",
		"Path to the local plugin repository checkout")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repo, err := resolvePluginRepo(cfg.PullRequest.Repo, cfg.PullRequest.TargetBranch, repoDir)
	if err != nil {
		return err
	}
	logger.Infof("Plugin repository: %s/%s (base %s)", repo.Owner, repo.Name, repo.DefaultBranch)

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	logger.Info("Starting specwatch run...")

	result, err := svc.Run(ctx, cfg, repo, domain.RunOptions{
		DryRun:  dryRun,
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	if result.PullRequest != nil {
		logger.Infof("Run complete: PR #%d (%s)", result.PullRequest.ID, result.PullRequest.URL)
	} else {
		logger.Info("Run complete: no PR created")
	}
	return nil
}

// resolvePluginRepo determines the hosting repository for the pull request,
// preferring the explicit owner/name from the config over detection from
// the local checkout's origin remote.
func resolvePluginRepo(configured, targetBranch, dir string) (domain.Repository, error) {
	if configured != "" {
		parts := strings.SplitN(configured, "/", 2)
		branch := targetBranch
		if branch == "" {
			branch = "main"
		}
		return domain.Repository{
			Owner:         parts[0],
			Name:          parts[1],
			DefaultBranch: branch,
		}, nil
	}

	repo, err := gitrepo.Detect(dir)
	if err != nil {
		return domain.Repository{}, fmt.Errorf(
			"failed to detect plugin repository: %w\nSet pullrequest.repo in the config to override",
			err,
		)
	}
	return repo, nil
}
