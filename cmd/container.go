package cmd

import (
	"go.uber.org/dig"

	"github.com/specwatch/specwatch/application"
	"github.com/specwatch/specwatch/config"
	"github.com/specwatch/specwatch/domain"
	"github.com/specwatch/specwatch/infrastructure/feed"
	"github.com/specwatch/specwatch/infrastructure/fetch"
	ghprovider "github.com/specwatch/specwatch/infrastructure/provider/github"
	"github.com/specwatch/specwatch/infrastructure/shell"
	ghsource "github.com/specwatch/specwatch/infrastructure/source/github"
)

// buildService wires the pipeline collaborators through a dig container,
// bottom-up: config -> infrastructure -> application service.
func buildService(cfg *config.Config) (*application.PipelineService, error) {
	container := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		func(c *config.Config) domain.ReleaseSource {
			return ghsource.New(c.Upstream.Token)
		},
		func(c *config.Config) domain.Provider {
			return ghprovider.New(c.Upstream.Token)
		},
		shell.New,
		func() application.PackageFetcher { return fetch.New() },
		func(c *config.Config) application.ArtifactPublisher {
			if c.Feed.URL == "" {
				return nil
			}
			return feed.New(c.Feed.URL, c.Feed.APIKey)
		},
		application.NewPipelineService,
	}

	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	var svc *application.PipelineService
	if err := container.Invoke(func(s *application.PipelineService) {
		svc = s
	}); err != nil {
		return nil, err
	}

	return svc, nil
}
