// Package testdoubles provides test doubles (spies, stubs, dummies) for
// domain interfaces. These are hand-crafted implementations, no mock
// frameworks.
package testdoubles

import (
	"context"

	"github.com/specwatch/specwatch/domain"
)

// ---------------------------------------------------------------------------
// SpyReleaseSource
// ---------------------------------------------------------------------------

// SpyReleaseSource implements domain.ReleaseSource as a configurable spy.
type SpyReleaseSource struct {
	Releases []domain.Release
	FetchErr error

	// spy: requests received
	FetchedOwners []string
	FetchedRepos  []string
	FetchedCounts []int
}

var _ domain.ReleaseSource = (*SpyReleaseSource)(nil)

func (s *SpyReleaseSource) FetchLatestReleases(
	_ context.Context,
	owner, repo string,
	count int,
) ([]domain.Release, error) {
	s.FetchedOwners = append(s.FetchedOwners, owner)
	s.FetchedRepos = append(s.FetchedRepos, repo)
	s.FetchedCounts = append(s.FetchedCounts, count)
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	if len(s.Releases) > count {
		return s.Releases[:count], nil
	}
	return s.Releases, nil
}

// ---------------------------------------------------------------------------
// SpyProvider
// ---------------------------------------------------------------------------

// SpyProvider implements domain.Provider as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyProvider struct {
	// --- identity ---
	ProviderName string
	Token        string

	// --- CreateBranchWithChanges ---
	CreateBranchErr error
	// spy: inputs received
	BranchInputs []domain.BranchInput

	// --- CreatePullRequest ---
	CreatedPR   *domain.PullRequest
	CreatePRErr error
	// spy: inputs received
	PRInputs []domain.PullRequestInput

	// --- PullRequestExists ---
	PRExistsResult bool
	PRExistsErr    error
	// spy: branch names checked
	PRExistsBranches []string
}

var _ domain.Provider = (*SpyProvider)(nil)

func (p *SpyProvider) Name() string { return p.ProviderName }

func (p *SpyProvider) AuthToken() string { return p.Token }

func (p *SpyProvider) CreateBranchWithChanges(
	_ context.Context,
	_ domain.Repository,
	input domain.BranchInput,
) error {
	p.BranchInputs = append(p.BranchInputs, input)
	return p.CreateBranchErr
}

func (p *SpyProvider) CreatePullRequest(
	_ context.Context,
	_ domain.Repository,
	input domain.PullRequestInput,
) (*domain.PullRequest, error) {
	p.PRInputs = append(p.PRInputs, input)
	if p.CreatePRErr != nil {
		return nil, p.CreatePRErr
	}
	return p.CreatedPR, nil
}

func (p *SpyProvider) PullRequestExists(
	_ context.Context,
	_ domain.Repository,
	sourceBranch string,
) (bool, error) {
	p.PRExistsBranches = append(p.PRExistsBranches, sourceBranch)
	return p.PRExistsResult, p.PRExistsErr
}

// ---------------------------------------------------------------------------
// SpyRunner
// ---------------------------------------------------------------------------

// SpyRunner implements domain.CommandRunner as a spy. OnRun, when set, is
// invoked for every command so tests can simulate tool side effects such as
// the generator writing the spec artifact.
type SpyRunner struct {
	RunErr error
	OnRun  func(dir string, command []string) error

	// spy: invocations received
	Commands [][]string
	Dirs     []string
}

var _ domain.CommandRunner = (*SpyRunner)(nil)

func (r *SpyRunner) Run(_ context.Context, dir string, command []string) error {
	r.Commands = append(r.Commands, command)
	r.Dirs = append(r.Dirs, dir)
	if r.OnRun != nil {
		if err := r.OnRun(dir, command); err != nil {
			return err
		}
	}
	return r.RunErr
}

// ---------------------------------------------------------------------------
// SpyFetcher
// ---------------------------------------------------------------------------

// SpyFetcher implements application.PackageFetcher as a spy.
type SpyFetcher struct {
	ToolDir  string
	FetchErr error

	// spy: requests received
	FetchedURLs []string
	FetchedTags []string
}

func (f *SpyFetcher) FetchToolPackage(
	_ context.Context,
	rawURL, _, _, tag, _, _ string,
) (string, error) {
	f.FetchedURLs = append(f.FetchedURLs, rawURL)
	f.FetchedTags = append(f.FetchedTags, tag)
	if f.FetchErr != nil {
		return "", f.FetchErr
	}
	return f.ToolDir, nil
}

// ---------------------------------------------------------------------------
// SpyPublisher
// ---------------------------------------------------------------------------

// SpyPublisher implements application.ArtifactPublisher as a spy.
type SpyPublisher struct {
	PushErr error

	// spy: artifact paths received
	Pushed []string
}

func (p *SpyPublisher) Push(_ context.Context, path string) error {
	p.Pushed = append(p.Pushed, path)
	return p.PushErr
}
