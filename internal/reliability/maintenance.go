package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/database"
)

// JournalPruner drops run history older than a cutoff
type JournalPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// MaintenanceService checks integrity, truncates WAL files and prunes old run history
type MaintenanceService struct {
	databases []*database.DB
	journal   JournalPruner
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewMaintenanceService creates a maintenance service. journal may be nil.
func NewMaintenanceService(databases []*database.DB, journal JournalPruner, retention time.Duration, log zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{
		databases: databases,
		journal:   journal,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("service", "maintenance").Logger(),
	}
}

// Run executes one maintenance pass. A failed integrity check halts the pass.
func (m *MaintenanceService) Run(ctx context.Context) error {
	m.log.Info().Msg("Starting maintenance")
	startTime := m.now()

	for _, db := range m.databases {
		if err := db.HealthCheck(ctx); err != nil {
			m.log.Error().Err(err).Str("database", db.Name()).Msg("CRITICAL: integrity check failed")
			return fmt.Errorf("maintenance halted: %w", err)
		}

		if _, err := db.Conn().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			// not critical, the next pass retries
			m.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
	}

	if m.journal != nil && m.retention > 0 {
		pruned, err := m.journal.Prune(ctx, m.now().Add(-m.retention))
		if err != nil {
			return fmt.Errorf("failed to prune run journal: %w", err)
		}
		m.log.Info().Int64("pruned", pruned).Msg("Run journal pruned")
	}

	m.log.Info().Dur("duration", m.now().Sub(startTime)).Msg("Maintenance completed")
	return nil
}
