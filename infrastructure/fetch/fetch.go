// Package fetch downloads the upstream tool package and unpacks it for the
// code generator to consume.
package fetch

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
	"github.com/walle/targz"
)

// Fetcher downloads release tarballs over HTTP with transport-level retries.
type Fetcher struct {
	client *retryablehttp.Client
}

// New creates a Fetcher with default retry policy.
func New() *Fetcher {
	client := retryablehttp.NewClient()
	client.Logger = logger.StandardLogger()
	return &Fetcher{client: client}
}

// TarballURL returns the canonical GitHub source tarball URL for a tag.
func TarballURL(owner, repo, tag string) string {
	return fmt.Sprintf(
		"https://github.com/%s/%s/archive/refs/tags/%s.tar.gz",
		owner, repo, tag,
	)
}

// Download fetches rawURL into destPath. When expectedSha256 is non-empty
// the downloaded bytes are checked against it and a mismatch removes the
// file and fails.
func (f *Fetcher) Download(ctx context.Context, rawURL, destPath, expectedSha256 string) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %q: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("failed to download %q: %s", rawURL, resp.Status)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(destPath), 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create download dir: %w", mkdirErr)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", destPath, err)
	}
	defer out.Close()

	hasher := sha256.New()
	if _, copyErr := io.Copy(out, io.TeeReader(resp.Body, hasher)); copyErr != nil {
		return fmt.Errorf("failed to write %q: %w", destPath, copyErr)
	}

	if expectedSha256 != "" {
		got := fmt.Sprintf("%x", hasher.Sum(nil))
		if got != expectedSha256 {
			os.Remove(destPath)
			return fmt.Errorf(
				"checksum mismatch for %q: got %s, want %s",
				rawURL, got, expectedSha256,
			)
		}
	}

	return nil
}

// Extract unpacks a .tar.gz file into the destination directory.
func (f *Fetcher) Extract(tarball, destination string) error {
	if err := targz.Extract(tarball, destination); err != nil {
		return fmt.Errorf("failed to extract %q: %w", tarball, err)
	}
	return nil
}

// FetchToolPackage downloads the source tarball for the given release tag
// into dir, extracts it, and returns the extracted package directory.
// An empty rawURL defaults to the GitHub source tarball for the tag.
// A previously extracted package for the same tag is reused.
func (f *Fetcher) FetchToolPackage(
	ctx context.Context,
	rawURL, owner, repo, tag, dir, expectedSha256 string,
) (string, error) {
	extracted := filepath.Join(dir, extractedDirName(repo, tag))
	if info, err := os.Stat(extracted); err == nil && info.IsDir() {
		logger.Debugf("[fetch] Reusing extracted package at %s", extracted)
		return extracted, nil
	}

	if rawURL == "" {
		rawURL = TarballURL(owner, repo, tag)
	}

	tarball := filepath.Join(dir, fmt.Sprintf("%s-%s.tar.gz", repo, tag))
	if err := f.Download(ctx, rawURL, tarball, expectedSha256); err != nil {
		return "", err
	}

	if err := f.Extract(tarball, dir); err != nil {
		return "", err
	}

	if info, err := os.Stat(extracted); err != nil || !info.IsDir() {
		return "", fmt.Errorf("tarball did not contain expected directory %q", extracted)
	}

	return extracted, nil
}

// extractedDirName follows the GitHub source tarball convention of
// "<repo>-<tag without v prefix>".
func extractedDirName(repo, tag string) string {
	return repo + "-" + strings.TrimPrefix(tag, "v")
}
