package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/syncer"
)

// Job names
const (
	JobSyncInstruments  = "sync_instruments"
	JobSyncCandles      = "sync_candles"
	JobStoreBackup      = "store_backup"
	JobStoreMaintenance = "store_maintenance"
)

const defaultJobTimeout = time.Hour

// InstrumentsSyncer runs an instruments sync
type InstrumentsSyncer interface {
	SyncInstruments(ctx context.Context) (*syncer.Report, error)
}

// CandlesSyncer runs a candles sync
type CandlesSyncer interface {
	SyncCandles(ctx context.Context, figis []string, table string) (*syncer.Report, error)
}

// Runner is a context-aware unit of work such as a backup or maintenance pass
type Runner interface {
	Run(ctx context.Context) error
}

// InstrumentsSyncJob appends newly listed instruments
type InstrumentsSyncJob struct {
	engine  InstrumentsSyncer
	timeout time.Duration
	log     zerolog.Logger
}

// NewInstrumentsSyncJob creates a new InstrumentsSyncJob
func NewInstrumentsSyncJob(engine InstrumentsSyncer, log zerolog.Logger) *InstrumentsSyncJob {
	return &InstrumentsSyncJob{
		engine:  engine,
		timeout: defaultJobTimeout,
		log:     log.With().Str("job", JobSyncInstruments).Logger(),
	}
}

// Name returns the job name
func (j *InstrumentsSyncJob) Name() string {
	return JobSyncInstruments
}

// Run executes the instruments sync
func (j *InstrumentsSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.engine.SyncInstruments(ctx)
	if err != nil {
		return fmt.Errorf("instruments sync failed: %w", err)
	}
	j.log.Info().Str("run_id", report.RunID).Int("appended", report.Appended).Msg("Instruments synced")
	return nil
}

// CandlesSyncJob appends new candles for the configured figis. Figis that
// fail at the provider do not fail the job.
type CandlesSyncJob struct {
	engine  CandlesSyncer
	figis   []string
	table   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewCandlesSyncJob creates a new CandlesSyncJob. Empty figis and table
// fall back to the engine defaults.
func NewCandlesSyncJob(engine CandlesSyncer, figis []string, table string, log zerolog.Logger) *CandlesSyncJob {
	return &CandlesSyncJob{
		engine:  engine,
		figis:   figis,
		table:   table,
		timeout: defaultJobTimeout,
		log:     log.With().Str("job", JobSyncCandles).Logger(),
	}
}

// Name returns the job name
func (j *CandlesSyncJob) Name() string {
	return JobSyncCandles
}

// Run executes the candles sync
func (j *CandlesSyncJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	report, err := j.engine.SyncCandles(ctx, j.figis, j.table)
	if err != nil {
		return fmt.Errorf("candles sync failed: %w", err)
	}
	if failed := report.Failed(); failed > 0 {
		j.log.Warn().Str("run_id", report.RunID).Int("failed", failed).Msg("Some figis failed")
	}
	return nil
}

// RunnerJob adapts a Runner to the Job interface
type RunnerJob struct {
	name    string
	runner  Runner
	timeout time.Duration
}

// NewBackupJob wraps a backup service
func NewBackupJob(runner Runner) *RunnerJob {
	return &RunnerJob{name: JobStoreBackup, runner: runner, timeout: defaultJobTimeout}
}

// NewMaintenanceJob wraps a maintenance service
func NewMaintenanceJob(runner Runner) *RunnerJob {
	return &RunnerJob{name: JobStoreMaintenance, runner: runner, timeout: defaultJobTimeout}
}

// Name returns the job name
func (j *RunnerJob) Name() string {
	return j.name
}

// Run executes the wrapped runner
func (j *RunnerJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	return j.runner.Run(ctx)
}
