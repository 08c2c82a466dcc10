// Package github implements domain.ReleaseSource against the GitHub
// releases API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v66/github"
	logger "github.com/sirupsen/logrus"

	"github.com/specwatch/specwatch/domain"
)

const sourceName = "github"

// Source fetches release metadata for the upstream tool from GitHub.
type Source struct {
	client *gh.Client
}

// New creates a new GitHub release source. An empty token yields an
// unauthenticated client, subject to the public API rate limits.
func New(token string) domain.ReleaseSource {
	client := gh.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return &Source{client: client}
}

func newWithClient(client *gh.Client) *Source {
	return &Source{client: client}
}

// Name returns the source identifier.
func (s *Source) Name() string { return sourceName }

// FetchLatestReleases returns the count most recent releases of owner/repo,
// newest first, resolving each tag to its commit SHA. Draft releases are
// not published versions and are skipped.
func (s *Source) FetchLatestReleases(
	ctx context.Context,
	owner, repo string,
	count int,
) ([]domain.Release, error) {
	if count < 1 {
		return nil, fmt.Errorf("release count must be at least 1, got %d", count)
	}

	ghReleases, _, err := s.client.Repositories.ListReleases(
		ctx, owner, repo,
		&gh.ListOptions{PerPage: count},
	)
	if err != nil {
		return nil, mapError(fmt.Sprintf("failed to list releases for %s/%s", owner, repo), err)
	}

	releases := make([]domain.Release, 0, count)
	for _, r := range ghReleases {
		if r.GetDraft() {
			continue
		}

		sha, _, shaErr := s.client.Repositories.GetCommitSHA1(
			ctx, owner, repo, r.GetTagName(), "",
		)
		if shaErr != nil {
			return nil, mapError(
				fmt.Sprintf("failed to resolve commit for tag %q", r.GetTagName()),
				shaErr,
			)
		}

		releases = append(releases, domain.Release{
			Tag:         r.GetTagName(),
			CommitRef:   sha,
			PublishedAt: r.GetPublishedAt().Time,
		})

		if len(releases) == count {
			break
		}
	}

	logger.Debugf("[github] Fetched %d releases for %s/%s", len(releases), owner, repo)
	return releases, nil
}

// mapError translates go-github failures into the domain error taxonomy.
func mapError(msg string, err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %w: %v", msg, domain.ErrAuth, err)
	}

	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", msg, domain.ErrAuth, err)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %w: %v", msg, domain.ErrNotFound, err)
		}
	}

	return fmt.Errorf("%s: %w: %v", msg, domain.ErrNetwork, err)
}
