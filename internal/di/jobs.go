package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/config"
	"github.com/aristath/investsync/internal/scheduler"
)

// RegisterJobs adds the sync and upkeep jobs to sched. Sync jobs without a
// schedule are still registered so they can be run on demand.
func RegisterJobs(container *Container, sched *scheduler.Scheduler, cfg *config.Config, log zerolog.Logger) error {
	register := func(schedule string, job scheduler.Job) error {
		if err := sched.AddJob(schedule, job); err != nil {
			return fmt.Errorf("failed to register %s: %w", job.Name(), err)
		}
		return nil
	}

	if err := register(cfg.Sync.Schedule, scheduler.NewInstrumentsSyncJob(container.Engine, log)); err != nil {
		return err
	}
	if err := register(cfg.Sync.Schedule, scheduler.NewCandlesSyncJob(container.Engine, nil, "", log)); err != nil {
		return err
	}
	if err := register(cfg.Sync.MaintenanceSchedule, scheduler.NewMaintenanceJob(container.Maintenance)); err != nil {
		return err
	}
	if container.Backup != nil {
		if err := register(cfg.Sync.BackupSchedule, scheduler.NewBackupJob(container.Backup)); err != nil {
			return err
		}
	}
	return nil
}
