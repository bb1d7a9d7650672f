package main

import (
	"fmt"

	"github.com/dfryer1193/newsroom/article/application"
	"github.com/dfryer1193/newsroom/article/domain"
	"github.com/dfryer1193/newsroom/article/persistence"
	"github.com/dfryer1193/newsroom/internal/config"
	"github.com/dfryer1193/newsroom/shared/db/sqlite"
	gh "github.com/dfryer1193/newsroom/shared/github"
	"github.com/google/go-github/v75/github"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// app holds the wired content pipeline and the resources it owns.
type app struct {
	database *sqlite.SQLiteDB
	content  *application.ContentService
	resolver *application.ImageResolver
}

func newApp(cfg *config.Config, reg prometheus.Registerer) (*app, error) {
	database := sqlite.NewSQLiteDB(sqlite.NewSQLiteConfig())
	if err := database.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	images := persistence.NewImageRepository(database.DB())
	articles := persistence.NewArticleRepository(database.DB())

	resolver := application.NewImageResolver(
		images,
		application.NewImageCache(application.WithTTL(cfg.ImageCacheTTL)),
		application.WithLookupTimeout(cfg.ImageLookupTimeout),
		application.WithConcurrency(cfg.ImageLookupConcurrency),
		application.WithMetrics(application.NewResolverMetrics(reg)),
	)

	content := application.NewContentService(
		articles,
		images,
		blobs,
		application.NewMarkdownRenderer(cfg.SiteURL),
		resolver,
	)

	return &app{
		database: database,
		content:  content,
		resolver: resolver,
	}, nil
}

func newBlobStore(cfg *config.Config) (domain.BlobStore, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendGithub:
		client := github.NewClient(nil)
		if cfg.GithubToken != "" {
			client = client.WithAuthToken(cfg.GithubToken)
		}
		log.Info().Str("repo", cfg.GithubOwner+"/"+cfg.GithubRepo).Str("ref", cfg.GithubRef).Msg("Reading articles from GitHub")
		return gh.NewGithubBlobStore(client, cfg.GithubOwner, cfg.GithubRepo, cfg.GithubRef, cfg.BlobRoot), nil
	case config.BlobBackendFS:
		log.Info().Str("root", cfg.BlobRoot).Msg("Reading articles from disk")
		return persistence.NewFileBlobStore(cfg.BlobRoot), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

func (a *app) Close() {
	if err := a.database.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}
