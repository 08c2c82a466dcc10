// Package feed pushes packaged artifacts to an HTTP package feed.
package feed

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"

	"github.com/specwatch/specwatch/domain"
)

const apiKeyHeader = "X-API-Key"

// Client uploads artifacts to a package feed endpoint.
type Client struct {
	client *retryablehttp.Client
	url    string
	apiKey string
}

// New creates a feed client for the given endpoint and API key.
func New(url, apiKey string) *Client {
	client := retryablehttp.NewClient()
	client.Logger = logger.StandardLogger()
	return &Client{
		client: client,
		url:    url,
		apiKey: apiKey,
	}
}

// Push uploads the artifact at path to the feed. A conflict response means
// the same version was already published, which is treated as success so
// reruns of the pipeline stay idempotent.
func (c *Client) Push(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact %q: %w", path, err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPut, c.url, data)
	if err != nil {
		return fmt.Errorf("failed to build feed request: %w", err)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to push %q to feed: %w: %v", path, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		logger.Warnf("[feed] %s already exists on the feed, skipping", filepath.Base(path))
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("feed rejected the API key: %w: %s", domain.ErrAuth, resp.Status)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("feed push failed: %w: %s", domain.ErrNetwork, resp.Status)
	}

	logger.Infof("[feed] Pushed %s (%d bytes)", filepath.Base(path), len(data))
	return nil
}
