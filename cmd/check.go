package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/specwatch/specwatch/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a new upstream release requires regeneration",
	Long: `Fetch the two most recent upstream releases, compare the latest one
against the commit reference recorded in the generated spec artifact, and
report whether regeneration is needed and what semantic-version bump the
new release represents. Performs no writes.`,
	RunE: runCheck,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	result, err := svc.Check(ctx, cfg)
	if err != nil {
		return err
	}

	if !result.UpdateAvailable {
		fmt.Printf(
			"✅ %s/%s: generated specs are up to date with %s\n",
			cfg.Upstream.Owner, cfg.Upstream.Repo, result.Latest.Tag,
		)
		return nil
	}

	prefix, err := domain.CommitRefPrefix(result.Latest)
	if err != nil {
		return err
	}

	fmt.Printf(
		"🔄 %s/%s: update available — %s (%s bump, ref %s)\n",
		cfg.Upstream.Owner, cfg.Upstream.Repo, result.Latest.Tag, result.Bump, prefix,
	)
	return nil
}
