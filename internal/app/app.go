// Package app builds the storage provider and the services that sit on it.
package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/julianstephens/limitless/internal/archive"
	"github.com/julianstephens/limitless/internal/badges"
	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/config"
	"github.com/julianstephens/limitless/internal/constants"
	"github.com/julianstephens/limitless/internal/daily"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/events"
	"github.com/julianstephens/limitless/internal/keyring"
	"github.com/julianstephens/limitless/internal/storage"
	"github.com/julianstephens/limitless/internal/storage/postgres"
	"github.com/julianstephens/limitless/internal/storage/sqlite"
	"github.com/julianstephens/limitless/internal/votes"
)

// NewProvider returns the storage provider selected by cfg. It does not
// initialize or load it.
func NewProvider(cfg config.Config) (storage.Provider, error) {
	switch cfg.Storage {
	case constants.StorageFile, "":
		return storage.NewFileStore(cfg.DataDir), nil
	case constants.StorageMemory:
		return storage.NewMemoryStore(), nil
	case constants.StorageSQLite:
		return sqlite.NewStore(filepath.Join(cfg.DataDir, constants.SQLiteFileName)), nil
	case constants.StoragePostgres:
		connStr, err := keyring.ResolveConnectionString()
		if err != nil {
			return nil, err
		}
		if _, err := postgres.ValidateConnString(connStr); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: use .pgpass or PGPASSWORD instead", err)
			}
			return nil, err
		}
		return postgres.NewStore(connStr), nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

// App is the set of services behind the HTTP surface and the CLI.
type App struct {
	Config   config.Config
	Provider storage.Provider
	Clock    clock.Clock
	Started  time.Time

	Docs    *daily.Service
	Archive *archive.Manager
	Events  *events.Log
	Boss    *events.Log
	Votes   *votes.Service
	Badges  *badges.Engine
}

// New wires every service onto an initialized or loaded provider.
func New(cfg config.Config, provider storage.Provider, c clock.Clock) (*App, error) {
	catalog, err := badges.LoadCatalog(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	manager := archive.NewManager(provider, documents.DailyNames(), cfg.RetentionDays)
	docs := daily.NewService(daily.NewStore(provider), manager, c)
	voteService := votes.NewService(docs)
	boss := events.NewLog(provider, constants.BossLogName, c)

	return &App{
		Config:   cfg,
		Provider: provider,
		Clock:    c,
		Started:  c.Now(),
		Docs:     docs,
		Archive:  manager,
		Events:   events.NewLog(provider, constants.EventsLogName, c),
		Boss:     boss,
		Votes:    voteService,
		Badges: badges.NewEngine(badges.Options{
			Docs:    docs,
			Votes:   voteService,
			Boss:    boss,
			Catalog: catalog,
			Rules:   cfg.Badges,
		}),
	}, nil
}

// Today is the current calendar date in the configured timezone.
func (a *App) Today() string {
	return clock.Today(a.Clock)
}

// Close releases the provider.
func (a *App) Close() error {
	return a.Provider.Close()
}
