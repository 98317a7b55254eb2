package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/config"
	"github.com/aristath/investsync/internal/database"
	"github.com/aristath/investsync/internal/store"
)

// InitializeDatabases opens the run journal and the configured store
func InitializeDatabases(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// journal.db - run history, always local
	journalDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "journal.db"),
		Profile: database.ProfileStandard,
		Name:    database.NameJournal,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize journal database: %w", err)
	}
	container.addCloser(journalDB.Close)
	container.JournalDB = journalDB

	if err := journalDB.Migrate(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(ctx, cfg.Store.DSN, log)
		if err != nil {
			container.Close()
			return nil, err
		}
		container.addCloser(pg.Close)
		container.Store = pg

	default:
		// the store file, e.g. tinkoff.db, holds the synced tables
		storeDB, err := database.New(database.Config{
			Path:    cfg.Store.DSN,
			Profile: database.ProfileAppend,
			Name:    database.NameStore,
		})
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to initialize store database: %w", err)
		}
		container.addCloser(storeDB.Close)
		container.StoreDB = storeDB
		container.Store = store.NewSQLiteStore(storeDB, log)
	}

	log.Info().
		Str("driver", cfg.Store.Driver).
		Str("journal", journalDB.Path()).
		Msg("Databases initialized")
	return container, nil
}
