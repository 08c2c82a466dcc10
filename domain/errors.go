package domain

import "errors"

// Failure categories surfaced by the release source and the update checker.
// Callers branch on these with errors.Is; none of them is ever downgraded
// to a default "no update" answer.
var (
	// ErrNetwork indicates a transport-level failure talking to the
	// release-hosting service.
	ErrNetwork = errors.New("network failure")

	// ErrAuth indicates an invalid, expired, or rate-limited credential.
	ErrAuth = errors.New("authentication failure")

	// ErrNotFound indicates the repository identifier did not resolve.
	ErrNotFound = errors.New("repository not found")

	// ErrParse indicates the spec artifact exists but its recorded
	// commit reference could not be located.
	ErrParse = errors.New("cannot parse recorded reference")

	// ErrVersionFormat indicates a release tag is not a valid semantic version.
	ErrVersionFormat = errors.New("invalid version format")

	// ErrInvalidReference indicates a commit reference too short to
	// yield the fixed-length embedding prefix.
	ErrInvalidReference = errors.New("invalid commit reference")
)
