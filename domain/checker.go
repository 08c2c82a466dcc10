package domain

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// VersionBump is the semantic-versioning category by which a new release
// differs from a previous one.
type VersionBump int

const (
	BumpNone VersionBump = iota
	BumpPatch
	BumpMinor
	BumpMajor
)

func (b VersionBump) String() string {
	switch b {
	case BumpPatch:
		return "patch"
	case BumpMinor:
		return "minor"
	case BumpMajor:
		return "major"
	default:
		return "none"
	}
}

// RefPrefixLen is the fixed length of the commit reference prefix embedded
// into generated spec artifacts. Generated code is keyed on this prefix, so
// it must never be silently shortened.
const RefPrefixLen = 10

// CommitRefPrefix returns the fixed-length prefix of the release's commit
// reference. References shorter than RefPrefixLen fail with
// ErrInvalidReference instead of producing a shorter key.
func CommitRefPrefix(release Release) (string, error) {
	if len(release.CommitRef) < RefPrefixLen {
		return "", fmt.Errorf(
			"%w: %q is shorter than %d characters",
			ErrInvalidReference, release.CommitRef, RefPrefixLen,
		)
	}
	return release.CommitRef[:RefPrefixLen], nil
}

// ComputeBump compares the latest release against the previous one and
// returns the version-bump category per semantic-version precedence:
// major beats minor beats patch. Both tags must be parseable semantic
// versions or the comparison fails with ErrVersionFormat.
func ComputeBump(latest, previous Release) (VersionBump, error) {
	latestVer, err := normalizeVersion(latest.Tag)
	if err != nil {
		return BumpNone, err
	}
	previousVer, err := normalizeVersion(previous.Tag)
	if err != nil {
		return BumpNone, err
	}

	switch {
	case semver.Major(latestVer) != semver.Major(previousVer):
		return BumpMajor, nil
	case semver.MajorMinor(latestVer) != semver.MajorMinor(previousVer):
		return BumpMinor, nil
	case semver.Compare(latestVer, previousVer) != 0:
		return BumpPatch, nil
	default:
		return BumpNone, nil
	}
}

// normalizeVersion prepends the "v" prefix expected by x/mod/semver and
// validates the result.
func normalizeVersion(tag string) (string, error) {
	v := tag
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrVersionFormat, tag)
	}
	return v, nil
}

// IsUpdateAvailable reports whether the latest release differs from the
// commit reference recorded in the spec artifact at specPath. A missing
// artifact means nothing was ever generated, so an update is always
// available. An artifact that exists but carries no readable reference
// fails with ErrParse rather than being treated as "no update".
func IsUpdateAvailable(latest Release, specPath string) (bool, error) {
	recorded, err := ReadRecordedReference(specPath)
	if errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}

	prefix, err := CommitRefPrefix(latest)
	if err != nil {
		return false, err
	}

	return recorded != prefix, nil
}

// specArtifact is the subset of the generated specification document this
// component reads. The full format is owned by the code generator; only the
// embedded upstream commit reference matters here.
type specArtifact struct {
	Info struct {
		UpstreamCommit string `yaml:"x-upstream-commit" json:"x-upstream-commit"`
	} `yaml:"info" json:"info"`
}

// ReadRecordedReference extracts the upstream commit reference embedded in
// a previously generated spec artifact.
func ReadRecordedReference(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read spec artifact %q: %w", path, err)
	}

	var artifact specArtifact
	if unmarshalErr := yaml.Unmarshal(data, &artifact); unmarshalErr != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrParse, path, unmarshalErr)
	}
	if artifact.Info.UpstreamCommit == "" {
		return "", fmt.Errorf("%w: %q has no info.x-upstream-commit field", ErrParse, path)
	}

	return artifact.Info.UpstreamCommit, nil
}
