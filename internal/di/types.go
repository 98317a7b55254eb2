package di

import (
	"github.com/aristath/investsync/internal/accounts"
	"github.com/aristath/investsync/internal/clients/tinkoff"
	"github.com/aristath/investsync/internal/database"
	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/events"
	"github.com/aristath/investsync/internal/reliability"
	"github.com/aristath/investsync/internal/runlog"
	"github.com/aristath/investsync/internal/syncer"
)

// Container holds every wired dependency of a process
type Container struct {
	// Databases. StoreDB is nil when the store is postgres.
	StoreDB   *database.DB
	JournalDB *database.DB

	// Store is the columnar target of sync runs
	Store domain.Store

	// Clients
	TinkoffClient *tinkoff.Client

	// Services
	Engine      *syncer.Engine
	Resolver    *accounts.Resolver
	Accounts    *accounts.Service
	Journal     *runlog.Journal
	Publisher   events.Publisher
	Backup      *reliability.BackupService // nil when backups are not configured
	Maintenance *reliability.MaintenanceService

	closers []func() error
}

// Databases lists the open local databases
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	if c.StoreDB != nil {
		dbs = append(dbs, c.StoreDB)
	}
	if c.JournalDB != nil {
		dbs = append(dbs, c.JournalDB)
	}
	return dbs
}
