package di

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/accounts"
	"github.com/aristath/investsync/internal/candles"
	"github.com/aristath/investsync/internal/clients/tinkoff"
	"github.com/aristath/investsync/internal/config"
	"github.com/aristath/investsync/internal/events"
	"github.com/aristath/investsync/internal/reliability"
	"github.com/aristath/investsync/internal/runlog"
	"github.com/aristath/investsync/internal/syncer"
)

// InitializeServices builds the provider client and every service on top of
// the databases already in container
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	client := tinkoff.NewClient(tinkoff.Config{
		Token:     cfg.Provider.Token,
		BaseURL:   cfg.Provider.BaseURL,
		AppName:   "investsync",
		Timeout:   cfg.Provider.Timeout,
		RateLimit: cfg.Provider.RateLimit,
	}, log)
	container.addCloser(func() error {
		client.Close()
		return nil
	})
	container.TinkoffClient = client

	fetcher := candles.NewFetcher(client, candles.Config{
		Lookback: cfg.Sync.CandleLookback,
		Interval: cfg.Sync.CandleInterval,
	}, log)

	container.Engine = syncer.NewEngine(client, container.Store, fetcher, syncer.Config{
		InstrumentsTable: cfg.Sync.InstrumentsTable,
		CandlesTable:     cfg.Sync.CandlesTable,
		CandleFigis:      cfg.Sync.CandleFigis,
	}, log)

	container.Resolver = accounts.NewResolver(client, log)
	container.Accounts = accounts.NewService(client, client, log)

	// Run observers, journal first
	container.Journal = runlog.NewJournal(container.JournalDB.Conn(), log)
	container.Engine.AddObserver(container.Journal)

	if len(cfg.Kafka.Brokers) > 0 {
		container.Publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	} else {
		container.Publisher = events.NopPublisher{}
	}
	container.addCloser(container.Publisher.Close)
	container.Engine.AddObserver(container.Publisher)

	container.Maintenance = reliability.NewMaintenanceService(
		container.Databases(), container.Journal, cfg.Sync.RunRetention, log)

	if cfg.Backup.Enabled() {
		if container.StoreDB == nil {
			log.Warn().Msg("Backups are configured but only the sqlite store can be snapshotted")
		} else {
			s3Client, err := reliability.NewS3Client(ctx, cfg.Backup, log)
			if err != nil {
				return fmt.Errorf("failed to create backup client: %w", err)
			}
			container.Backup = reliability.NewBackupService(
				container.StoreDB,
				s3Client,
				filepath.Join(cfg.DataDir, "backup-staging"),
				cfg.Backup.Prefix,
				cfg.Backup.Retain,
				log,
			)
		}
	}

	return nil
}
