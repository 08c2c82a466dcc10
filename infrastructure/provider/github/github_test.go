package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specwatch/specwatch/domain"
	ghprovider "github.com/specwatch/specwatch/infrastructure/provider/github"
)

func newTestProvider(t *testing.T, handler http.Handler) *ghprovider.Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := gh.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	return ghprovider.NewWithClient("token", client)
}

func TestProviderIdentity(t *testing.T) {
	t.Parallel()

	t.Run("should return github as name", func(t *testing.T) {
		t.Parallel()

		// given
		p := ghprovider.New("token")

		// then
		assert.Equal(t, "github", p.Name())
	})

	t.Run("should expose the configured auth token", func(t *testing.T) {
		t.Parallel()

		// given
		p := ghprovider.New("secret")

		// then
		assert.Equal(t, "secret", p.AuthToken())
	})

	t.Run("should satisfy the Provider interface", func(t *testing.T) {
		t.Parallel()

		// given
		p := ghprovider.New("token")

		// then
		assert.Implements(t, (*domain.Provider)(nil), p)
	})
}

func TestPullRequestExists(t *testing.T) {
	t.Parallel()

	repo := domain.Repository{Owner: "example", Name: "widgets-plugin"}

	t.Run("should report true when an open PR exists for the branch", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/example/widgets-plugin/pulls", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "example:chore/upgrade-widgets-cli-13.2.0", r.URL.Query().Get("head"))
			fmt.Fprint(w, `[{"number": 7, "state": "open"}]`)
		})
		p := newTestProvider(t, mux)

		// when
		exists, err := p.PullRequestExists(context.Background(), repo, "chore/upgrade-widgets-cli-13.2.0")

		// then
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("should report false when no open PR exists", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/example/widgets-plugin/pulls", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[]`)
		})
		p := newTestProvider(t, mux)

		// when
		exists, err := p.PullRequestExists(context.Background(), repo, "chore/upgrade-widgets-cli-13.2.0")

		// then
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestCreatePullRequest(t *testing.T) {
	t.Parallel()

	t.Run("should create a PR and return its metadata", func(t *testing.T) {
		t.Parallel()

		// given
		mux := http.NewServeMux()
		mux.HandleFunc("/repos/example/widgets-plugin/pulls", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{
				"number": 42,
				"title": "chore(deps): upgrade widgets-cli to 13.2.0",
				"html_url": "https://github.com/example/widgets-plugin/pull/42",
				"state": "open"
			}`)
		})
		p := newTestProvider(t, mux)

		// when
		pr, err := p.CreatePullRequest(
			context.Background(),
			domain.Repository{Owner: "example", Name: "widgets-plugin"},
			domain.PullRequestInput{
				SourceBranch: "chore/upgrade-widgets-cli-13.2.0",
				TargetBranch: "main",
				Title:        "chore(deps): upgrade widgets-cli to 13.2.0",
				Description:  "Regenerated against 13.2.0.",
			},
		)

		// then
		require.NoError(t, err)
		assert.Equal(t, 42, pr.ID)
		assert.Equal(t, "https://github.com/example/widgets-plugin/pull/42", pr.URL)
		assert.Equal(t, "open", pr.Status)
	})
}
