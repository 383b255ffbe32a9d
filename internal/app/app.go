package app

import (
	"context"
	"fmt"

	"github.com/healthshield/mentions-bot/internal/config"
	"github.com/healthshield/mentions-bot/internal/extract"
	"github.com/healthshield/mentions-bot/internal/llm"
	"github.com/healthshield/mentions-bot/internal/monitoring"
	"github.com/healthshield/mentions-bot/internal/notifications"
	"github.com/healthshield/mentions-bot/internal/runlock"
	"github.com/healthshield/mentions-bot/internal/sources"
	"github.com/healthshield/mentions-bot/internal/storage"
	"github.com/sirupsen/logrus"
)

// App holds the wired services shared by the server and the CLI
type App struct {
	Config     *config.Config
	Store      *storage.SQLStore
	Archive    storage.ArchiveInterface
	Feeds      []sources.Source
	Search     *sources.SearchSource
	Monitoring *monitoring.Service

	closers []func() error
}

// New connects storage and builds every optional collaborator the
// configuration enables.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := storage.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Store: store, closers: []func() error{store.Close}}

	if err := store.Migrate(ctx); err != nil {
		a.Close()
		return nil, err
	}

	exa := sources.NewExaClient(cfg.ExaAPIKey, cfg.ExaBaseURL, cfg.HTTPTimeout)
	a.Feeds = sources.NewRSSSources(cfg.RSSFeeds, cfg.HTTPTimeout)
	a.Search = sources.NewSearchSource(exa, sources.SearchOptions{
		MaxResults:     cfg.SearchMaxResults,
		RecencyDays:    cfg.SearchRecencyDays,
		ExcludeDomains: sources.ExcludedDomains,
	})

	var fallback extract.TextProvider
	if exa.Enabled() {
		fallback = exa
	}

	var model llm.Client
	if cfg.LLMEnabled() {
		client, err := llm.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel)
		if err != nil {
			a.Close()
			return nil, err
		}
		model = client
	} else {
		logrus.Info("OPENROUTER_API_KEY not set, language model features disabled")
	}

	a.Archive, err = newArchive(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	var notifier notifications.NotificationInterface
	if n := notifications.NewService(cfg); n.Enabled() {
		notifier = n
	}

	lock, err := a.newLocker(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Monitoring = monitoring.NewService(cfg, store, monitoring.Components{
		Feeds:     a.Feeds,
		Search:    a.Search,
		Extractor: extract.NewExtractor(cfg.HTTPTimeout, fallback),
		LLM:       model,
		Archive:   a.Archive,
		Notifier:  notifier,
		Lock:      lock,
	})
	return a, nil
}

func newArchive(ctx context.Context, cfg *config.Config) (storage.ArchiveInterface, error) {
	switch {
	case cfg.StorageAccount != "":
		archive, err := storage.NewAzureArchive(ctx, cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize run archive: %w", err)
		}
		return archive, nil
	case cfg.ArchiveDir != "":
		archive, err := storage.NewDirArchive(cfg.ArchiveDir)
		if err != nil {
			return nil, err
		}
		return archive, nil
	default:
		return nil, nil
	}
}

func (a *App) newLocker(ctx context.Context) (runlock.Locker, error) {
	if a.Config.RedisURL == "" {
		return runlock.NewLocalLocker(), nil
	}
	lock, err := runlock.NewRedisLocker(ctx, a.Config.RedisURL, 0)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, lock.Close)
	logrus.Info("Using Redis run lock")
	return lock, nil
}

// Close releases connections in reverse order of creation
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logrus.Warnf("Error during shutdown: %v", err)
		}
	}
	a.closers = nil
}
