// Package gitrepo inspects the local working copy of the plugin repository.
package gitrepo

import (
	"fmt"
	"strings"

	git "github.com/go-git/go-git/v5"

	"github.com/specwatch/specwatch/domain"
)

const defaultBranch = "main"

// Detect opens the Git repository at path and derives the hosting
// repository (owner, name, current branch) from the origin remote.
func Detect(path string) (domain.Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return domain.Repository{}, fmt.Errorf("failed to open git repository at %q: %w", path, err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return domain.Repository{}, fmt.Errorf("failed to resolve origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return domain.Repository{}, fmt.Errorf("origin remote of %q has no URL", path)
	}
	remoteURL := urls[0]

	owner, name, err := ParseRemoteURL(remoteURL)
	if err != nil {
		return domain.Repository{}, err
	}

	branch := defaultBranch
	if head, headErr := repo.Head(); headErr == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	return domain.Repository{
		Owner:         owner,
		Name:          name,
		DefaultBranch: branch,
		RemoteURL:     remoteURL,
	}, nil
}

// ParseRemoteURL extracts owner and repository name from an HTTPS or SSH
// remote URL.
func ParseRemoteURL(remoteURL string) (string, string, error) {
	trimmed := remoteURL
	switch {
	case strings.HasPrefix(trimmed, "https://"):
		trimmed = strings.TrimPrefix(trimmed, "https://")
		// Drop the host part.
		if idx := strings.Index(trimmed, "/"); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
	case strings.Contains(trimmed, "@") && strings.Contains(trimmed, ":"):
		trimmed = trimmed[strings.Index(trimmed, ":")+1:]
	default:
		return "", "", fmt.Errorf("unsupported remote URL %q", remoteURL)
	}

	trimmed = strings.TrimSuffix(trimmed, ".git")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("remote URL %q is missing owner or repository", remoteURL)
	}

	return parts[0], parts[1], nil
}
