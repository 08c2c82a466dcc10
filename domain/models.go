package domain

import "time"

// Release represents one published version of the upstream tool.
type Release struct {
	Tag         string    // Tag name as published (e.g. "v13.2.0" or "13.2.0")
	CommitRef   string    // Full commit SHA the tag points at
	PublishedAt time.Time // Publication time, used for ordering when tags are ambiguous
}

// Repository identifies a repository on a Git hosting provider.
type Repository struct {
	Owner         string
	Name          string
	DefaultBranch string
	RemoteURL     string
}

// FileChange represents a file modification to be included in a commit.
type FileChange struct {
	Path    string
	Content string
}

// BranchInput contains the data needed to create a branch with file changes.
type BranchInput struct {
	BranchName    string
	BaseBranch    string
	Changes       []FileChange
	CommitMessage string
}

// PullRequestInput contains the data needed to create a pull request.
type PullRequestInput struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
}

// PullRequest represents a pull request returned by a provider.
type PullRequest struct {
	ID     int
	Title  string
	URL    string
	Status string
}

// RunOptions holds runtime options for a single pipeline run.
type RunOptions struct {
	DryRun  bool
	Verbose bool
}
