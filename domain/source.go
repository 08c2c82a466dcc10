package domain

import "context"

// ReleaseSource abstracts the release-hosting service for the upstream tool.
// Implementations must return releases newest-first; the checker only ever
// inspects the two most recent entries. Fetching is a pure query: the caller
// fetches once per run and threads the immutable slice through every
// operation that needs it.
type ReleaseSource interface {
	// FetchLatestReleases returns the count most recent releases of
	// owner/repo, newest first. count must be at least 1.
	FetchLatestReleases(ctx context.Context, owner, repo string, count int) ([]Release, error)
}
