package application

import (
	"context"
	"fmt"
	"os"

	"github.com/cbroglie/mustache"
	logger "github.com/sirupsen/logrus"

	"github.com/specwatch/specwatch/config"
	"github.com/specwatch/specwatch/domain"
)

const (
	releaseWindow = 2 // latest plus previous, all the bump decision needs

	defaultTitleTemplate = "chore(deps): upgrade {{upstream}} to {{version}}"
	defaultBodyTemplate  = "Regenerated the API client specifications against " +
		"[{{upstream}} {{version}}](https://github.com/{{owner}}/{{upstream}}/releases/tag/{{version}}) " +
		"(commit `{{ref}}`).\n\nThis is a **{{bump}}** upgrade from {{previous}}."
)

// PackageFetcher downloads and extracts the upstream tool package.
type PackageFetcher interface {
	FetchToolPackage(ctx context.Context, rawURL, owner, repo, tag, dir, expectedSha256 string) (string, error)
}

// ArtifactPublisher pushes a packaged artifact to the package feed.
type ArtifactPublisher interface {
	Push(ctx context.Context, path string) error
}

// PipelineService orchestrates the full regeneration flow: detect a new
// upstream release -> download the tool package -> regenerate the specs ->
// build and package the plugin -> push the artifact -> open the PR.
type PipelineService struct {
	source    domain.ReleaseSource
	provider  domain.Provider
	runner    domain.CommandRunner
	fetcher   PackageFetcher
	publisher ArtifactPublisher
}

// NewPipelineService creates a new service. publisher may be nil when no
// package feed is configured.
func NewPipelineService(
	source domain.ReleaseSource,
	provider domain.Provider,
	runner domain.CommandRunner,
	fetcher PackageFetcher,
	publisher ArtifactPublisher,
) *PipelineService {
	return &PipelineService{
		source:    source,
		provider:  provider,
		runner:    runner,
		fetcher:   fetcher,
		publisher: publisher,
	}
}

// RunResult summarizes one pipeline invocation.
type RunResult struct {
	UpdateAvailable bool
	Latest          domain.Release
	Bump            domain.VersionBump
	Artifact        string
	PullRequest     *domain.PullRequest

	previousTag string
}

// previousLabel names the release the upgrade starts from, for changelog
// entries and PR bodies.
func (r *RunResult) previousLabel() string {
	if r.previousTag == "" {
		return "the previous release"
	}
	return r.previousTag
}

// Check fetches the release window and decides whether regeneration is
// needed and what bump the latest release represents. It performs no writes.
func (s *PipelineService) Check(ctx context.Context, cfg *config.Config) (*RunResult, error) {
	releases, err := s.source.FetchLatestReleases(
		ctx, cfg.Upstream.Owner, cfg.Upstream.Repo, releaseWindow,
	)
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, fmt.Errorf(
			"upstream %s/%s has no published releases",
			cfg.Upstream.Owner, cfg.Upstream.Repo,
		)
	}
	latest := releases[0]

	available, err := domain.IsUpdateAvailable(latest, cfg.Spec.Path)
	if err != nil {
		return nil, err
	}
	if !available {
		return &RunResult{UpdateAvailable: false, Latest: latest, Bump: domain.BumpNone}, nil
	}

	bump := domain.BumpPatch
	if len(releases) > 1 {
		bump, err = domain.ComputeBump(latest, releases[1])
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warnf(
			"Upstream %s/%s has a single release, assuming a patch bump",
			cfg.Upstream.Owner, cfg.Upstream.Repo,
		)
	}

	result := &RunResult{UpdateAvailable: true, Latest: latest, Bump: bump}
	if len(releases) > 1 {
		result.previousTag = releases[1].Tag
	}
	return result, nil
}

// Run executes the full pipeline against repo, the hosting repository of
// the plugin project. The release window is fetched exactly once; every
// later step works on that snapshot.
func (s *PipelineService) Run(
	ctx context.Context,
	cfg *config.Config,
	repo domain.Repository,
	opts domain.RunOptions,
) (*RunResult, error) {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	result, err := s.Check(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !result.UpdateAvailable {
		logger.Infof(
			"Generated specs are up to date with %s/%s %s",
			cfg.Upstream.Owner, cfg.Upstream.Repo, result.Latest.Tag,
		)
		return result, nil
	}

	latest := result.Latest
	refPrefix, err := domain.CommitRefPrefix(latest)
	if err != nil {
		return nil, err
	}

	logger.Infof(
		"Upstream %s/%s moved to %s (%s bump, ref %s)",
		cfg.Upstream.Owner, cfg.Upstream.Repo, latest.Tag, result.Bump, refPrefix,
	)

	if opts.DryRun {
		logger.Infof("[DRY RUN] Would regenerate, package, and open a PR for %s", latest.Tag)
		return result, nil
	}

	view := map[string]string{
		"owner":    cfg.Upstream.Owner,
		"upstream": cfg.Upstream.Repo,
		"version":  latest.Tag,
		"bump":     result.Bump.String(),
		"ref":      refPrefix,
		"previous": result.previousLabel(),
	}

	if err = s.regenerate(ctx, cfg, latest, refPrefix, view); err != nil {
		return nil, err
	}

	if err = s.buildAndPublish(ctx, cfg, view, result); err != nil {
		return nil, err
	}

	s.updateChangelog(cfg, view)

	pr, err := s.openPullRequest(ctx, cfg, repo, view)
	if err != nil {
		return nil, err
	}
	result.PullRequest = pr

	return result, nil
}

// regenerate wipes stale outputs, fetches the tool package, and reruns the
// spec generator, verifying that the new commit reference got embedded.
func (s *PipelineService) regenerate(
	ctx context.Context,
	cfg *config.Config,
	latest domain.Release,
	refPrefix string,
	view map[string]string,
) error {
	for _, dir := range cfg.Clean {
		logger.Debugf("Removing %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clean %q: %w", dir, err)
		}
	}

	toolDir, err := s.fetcher.FetchToolPackage(
		ctx,
		cfg.Download.URL,
		cfg.Upstream.Owner, cfg.Upstream.Repo, latest.Tag,
		cfg.Download.Dir, cfg.Download.Sha256,
	)
	if err != nil {
		return err
	}
	view["tool_dir"] = toolDir
	logger.Infof("Tool package extracted to %s", toolDir)

	genCmd, err := renderCommand(cfg.Generator.Command, view)
	if err != nil {
		return err
	}
	if err = s.runner.Run(ctx, cfg.Generator.Dir, genCmd); err != nil {
		return fmt.Errorf("spec generation failed: %w", err)
	}

	recorded, err := domain.ReadRecordedReference(cfg.Spec.Path)
	if err != nil {
		return fmt.Errorf("generator did not produce a readable spec artifact: %w", err)
	}
	if recorded != refPrefix {
		return fmt.Errorf(
			"generator embedded reference %q, expected %q",
			recorded, refPrefix,
		)
	}

	return nil
}

// buildAndPublish compiles and packages the plugin, then pushes the
// artifact to the feed when one is configured.
func (s *PipelineService) buildAndPublish(
	ctx context.Context,
	cfg *config.Config,
	view map[string]string,
	result *RunResult,
) error {
	if len(cfg.Build.Command) > 0 {
		buildCmd, err := renderCommand(cfg.Build.Command, view)
		if err != nil {
			return err
		}
		if err = s.runner.Run(ctx, cfg.Build.Dir, buildCmd); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
	}

	if len(cfg.Package.Command) > 0 {
		packCmd, err := renderCommand(cfg.Package.Command, view)
		if err != nil {
			return err
		}
		if err = s.runner.Run(ctx, cfg.Package.Dir, packCmd); err != nil {
			return fmt.Errorf("packaging failed: %w", err)
		}
		result.Artifact = cfg.Package.Artifact
	}

	if s.publisher != nil && cfg.Feed.URL != "" && result.Artifact != "" {
		if err := s.publisher.Push(ctx, result.Artifact); err != nil {
			return err
		}
	}

	return nil
}

// updateChangelog inserts the upgrade entry into the local changelog.
// A missing changelog is not fatal, the PR still carries the regenerated spec.
func (s *PipelineService) updateChangelog(cfg *config.Config, view map[string]string) {
	content, err := os.ReadFile(cfg.Changelog.Path)
	if err != nil {
		logger.Warnf("Skipping changelog update: %v", err)
		return
	}

	entry := fmt.Sprintf(
		"- upgraded %s/%s from %s to %s",
		view["owner"], view["upstream"], view["previous"], view["version"],
	)
	updated := domain.InsertChangelogEntry(string(content), []string{entry})
	if updated == string(content) {
		logger.Warnf("Changelog %q has no Unreleased section, entry not added", cfg.Changelog.Path)
		return
	}

	if writeErr := os.WriteFile(cfg.Changelog.Path, []byte(updated), 0o644); writeErr != nil {
		logger.Warnf("Failed to write changelog: %v", writeErr)
	}
}

// openPullRequest pushes the regenerated spec and changelog on a branch and
// opens the pull request, unless one is already open for that branch.
func (s *PipelineService) openPullRequest(
	ctx context.Context,
	cfg *config.Config,
	repo domain.Repository,
	view map[string]string,
) (*domain.PullRequest, error) {
	branchName := fmt.Sprintf("chore/upgrade-%s-%s", view["upstream"], view["version"])

	exists, err := s.provider.PullRequestExists(ctx, repo, branchName)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Infof("PR for branch %s already open, skipping", branchName)
		return nil, nil
	}

	title, err := renderTemplate(cfg.PullRequest.TitleTemplate, defaultTitleTemplate, view)
	if err != nil {
		return nil, err
	}
	body, err := renderTemplate(cfg.PullRequest.BodyTemplate, defaultBodyTemplate, view)
	if err != nil {
		return nil, err
	}

	changes, err := collectChanges(cfg.Spec.Path, cfg.Changelog.Path)
	if err != nil {
		return nil, err
	}

	targetBranch := cfg.PullRequest.TargetBranch
	if targetBranch == "" {
		targetBranch = repo.DefaultBranch
	}

	err = s.provider.CreateBranchWithChanges(ctx, repo, domain.BranchInput{
		BranchName:    branchName,
		BaseBranch:    targetBranch,
		Changes:       changes,
		CommitMessage: title,
	})
	if err != nil {
		return nil, err
	}

	pr, err := s.provider.CreatePullRequest(ctx, repo, domain.PullRequestInput{
		SourceBranch: branchName,
		TargetBranch: targetBranch,
		Title:        title,
		Description:  body,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("Created PR #%d: %s (%s)", pr.ID, pr.Title, pr.URL)
	return pr, nil
}

// collectChanges reads the files that belong in the pull request. The spec
// artifact is mandatory; the changelog rides along when present.
func collectChanges(specPath, changelogPath string) ([]domain.FileChange, error) {
	spec, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regenerated spec: %w", err)
	}
	changes := []domain.FileChange{{Path: specPath, Content: string(spec)}}

	if changelog, clErr := os.ReadFile(changelogPath); clErr == nil {
		changes = append(changes, domain.FileChange{Path: changelogPath, Content: string(changelog)})
	}

	return changes, nil
}

// renderCommand renders each command argument as a mustache template, so
// configs can reference {{tool_dir}}, {{version}}, {{ref}}, and friends.
func renderCommand(command []string, view map[string]string) ([]string, error) {
	rendered := make([]string, 0, len(command))
	for _, arg := range command {
		out, err := mustache.Render(arg, view)
		if err != nil {
			return nil, fmt.Errorf("failed to render command argument %q: %w", arg, err)
		}
		rendered = append(rendered, out)
	}
	return rendered, nil
}

// renderTemplate renders tmpl, falling back to fallback when tmpl is empty.
func renderTemplate(tmpl, fallback string, view map[string]string) (string, error) {
	if tmpl == "" {
		tmpl = fallback
	}
	out, err := mustache.Render(tmpl, view)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return out, nil
}
