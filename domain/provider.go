package domain

import "context"

// Provider abstracts the Git hosting service where the plugin repository
// lives. It covers the write side of the pipeline: pushing regenerated
// files on a branch and opening the pull request.
type Provider interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	// CreateBranchWithChanges creates a new branch with one or more file
	// changes committed on top of the base branch.
	CreateBranchWithChanges(ctx context.Context, repo Repository, input BranchInput) error

	// CreatePullRequest opens a pull request on the hosting service.
	CreatePullRequest(ctx context.Context, repo Repository, input PullRequestInput) (*PullRequest, error)

	// PullRequestExists checks if an open pull request already exists for
	// the given source branch.
	PullRequestExists(ctx context.Context, repo Repository, sourceBranch string) (bool, error)

	// AuthToken returns the authentication token configured for this provider.
	AuthToken() string
}
