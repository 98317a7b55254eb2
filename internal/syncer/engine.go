// Package syncer incrementally appends provider data to the analytical store.
//
// A run reads the identity keys already persisted, fetches and projects the
// source records, drops rows whose key is present and appends the rest.
// Candle runs isolate provider failures per figi; store failures end the run.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/candles"
	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/money"
	"github.com/aristath/investsync/internal/projection"
)

// Source is the provider capability an engine reads from.
type Source interface {
	domain.RateSource
	domain.InstrumentsProvider
}

// RunObserver is notified after every run, successful or not.
type RunObserver interface {
	RunFinished(ctx context.Context, report *Report) error
}

// Config holds target tables and defaults
type Config struct {
	InstrumentsTable string
	CandlesTable     string
	CandleFigis      []string
	InstrumentStatus domain.InstrumentStatus
}

// Engine runs instrument and candle synchronizations. Runs are serialized;
// each one samples its own exchange rate.
type Engine struct {
	source    Source
	store     domain.Store
	fetcher   *candles.Fetcher
	cfg       Config
	observers []RunObserver
	now       func() time.Time
	runMu     sync.Mutex
	log       zerolog.Logger
}

// NewEngine creates a new sync engine
func NewEngine(source Source, store domain.Store, fetcher *candles.Fetcher, cfg Config, log zerolog.Logger) *Engine {
	if cfg.InstrumentsTable == "" {
		cfg.InstrumentsTable = "instruments"
	}
	if cfg.CandlesTable == "" {
		cfg.CandlesTable = "candles"
	}
	if cfg.InstrumentStatus == "" {
		cfg.InstrumentStatus = domain.InstrumentStatusBase
	}
	return &Engine{
		source:  source,
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
		log:     log.With().Str("service", "sync").Logger(),
	}
}

// AddObserver registers an observer for finished runs.
func (e *Engine) AddObserver(o RunObserver) {
	e.observers = append(e.observers, o)
}

// Config returns the engine configuration after defaults.
func (e *Engine) Config() Config {
	return e.cfg
}

// newRun prepares the per-run state: a fresh rate holder and projector.
func (e *Engine) newRun(kind Kind, table string) (*Report, *projection.Projector, zerolog.Logger) {
	report := &Report{
		RunID:     uuid.NewString(),
		Kind:      kind,
		Table:     table,
		StartedAt: e.now().UTC(),
	}
	log := e.log.With().Str("run_id", report.RunID).Str("kind", string(kind)).Str("table", table).Logger()
	rates := money.NewRates(e.source, log)
	return report, projection.NewProjector(money.NewNormalizer(rates, log)), log
}

// finish stamps the report, notifies observers and logs the summary.
func (e *Engine) finish(ctx context.Context, report *Report, log zerolog.Logger, runErr error) {
	report.FinishedAt = e.now().UTC()
	if runErr != nil {
		report.Error = runErr.Error()
	}

	for _, o := range e.observers {
		if err := o.RunFinished(context.WithoutCancel(ctx), report); err != nil {
			log.Warn().Err(err).Msg("Run observer failed")
		}
	}

	event := log.Info()
	if runErr != nil {
		event = log.Error().Err(runErr)
	}
	event.
		Int("fetched", report.Fetched).
		Int("appended", report.Appended).
		Int("failed", report.Failed()).
		Int("no_data", report.NoData()).
		Dur("duration", report.Duration()).
		Msg("Sync run finished")
}

func (e *Engine) ensureTable(ctx context.Context, table string, columns []domain.Column) error {
	ensurer, ok := e.store.(domain.TableEnsurer)
	if !ok {
		return nil
	}
	if err := ensurer.EnsureTable(ctx, table, columns); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", table, err)
	}
	return nil
}

// SyncInstruments appends instruments whose figi is not yet in the
// instruments table. The four kinds are fetched in order bonds, shares,
// ETFs, futures and written in one append. A kind without rows contributes
// nothing; a provider error aborts the run before anything is written.
func (e *Engine) SyncInstruments(ctx context.Context) (*Report, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	table := e.cfg.InstrumentsTable
	report, projector, log := e.newRun(KindInstruments, table)
	log.Info().Msg("Starting instrument sync")

	err := e.syncInstruments(ctx, table, report, projector, log)
	e.finish(ctx, report, log, err)
	return report, err
}

func (e *Engine) syncInstruments(ctx context.Context, table string, report *Report, projector *projection.Projector, log zerolog.Logger) error {
	if err := e.ensureTable(ctx, table, projection.InstrumentColumns); err != nil {
		return err
	}

	existing, err := e.store.ReadKeys(ctx, table, projection.InstrumentKeyColumn)
	if err != nil {
		return fmt.Errorf("failed to read existing instruments: %w", err)
	}
	log.Debug().Int("existing", len(existing)).Msg("Read existing instrument keys")

	var batches []domain.Batch
	for _, kind := range domain.InstrumentKinds {
		batch, err := e.fetchKind(ctx, projector, kind)
		if errors.Is(err, domain.ErrNoData) {
			log.Info().Str("instrument_kind", string(kind)).Msg("No instruments of kind")
			report.Items = append(report.Items, ItemResult{Item: string(kind), Outcome: OutcomeNoData})
			continue
		}
		if err != nil {
			item := ItemResult{Item: string(kind), Outcome: OutcomeFailed, Error: err.Error()}
			annotate(&item, err)
			report.Items = append(report.Items, item)
			return fmt.Errorf("failed to fetch %s instruments: %w", kind, err)
		}

		report.Fetched += batch.Len()
		report.Items = append(report.Items, ItemResult{Item: string(kind), Outcome: OutcomeAppended, Fetched: batch.Len()})
		batches = append(batches, batch)
	}

	fresh, duplicates := domain.Concat(batches...).Exclude(projection.InstrumentKeyColumn, existing)
	report.Duplicates = duplicates
	if duplicates > 0 {
		log.Warn().Int("duplicates", duplicates).Msg("Dropped figis repeated across instrument kinds")
	}
	if fresh.Empty() {
		log.Info().Msg("Instruments are up to date")
		return nil
	}

	if err := e.store.AppendRows(ctx, table, fresh); err != nil {
		return fmt.Errorf("failed to append instruments: %w", err)
	}
	report.Appended = fresh.Len()

	// Attribute appended rows back to their kind.
	kindIdx := fresh.ColumnIndex(projection.KindColumn)
	for _, row := range fresh.Rows {
		kind, _ := row[kindIdx].(string)
		for i := range report.Items {
			if report.Items[i].Item == kind {
				report.Items[i].Appended++
			}
		}
	}
	return nil
}

func (e *Engine) fetchKind(ctx context.Context, p *projection.Projector, kind domain.InstrumentKind) (domain.Batch, error) {
	status := e.cfg.InstrumentStatus
	switch kind {
	case domain.KindBond:
		bonds, err := e.source.Bonds(ctx, status)
		if err != nil {
			return domain.Batch{}, err
		}
		return p.Bonds(ctx, bonds)
	case domain.KindShare:
		shares, err := e.source.Shares(ctx, status)
		if err != nil {
			return domain.Batch{}, err
		}
		return p.Shares(ctx, shares)
	case domain.KindETF:
		etfs, err := e.source.ETFs(ctx, status)
		if err != nil {
			return domain.Batch{}, err
		}
		return p.ETFs(ctx, etfs)
	case domain.KindFuture:
		futures, err := e.source.Futures(ctx, status)
		if err != nil {
			return domain.Batch{}, err
		}
		return p.Futures(ctx, futures)
	default:
		return domain.Batch{}, fmt.Errorf("unknown instrument kind %q", kind)
	}
}

// SyncCandles appends the candles of each figi that are not yet in table.
// Empty figis or table fall back to the configured defaults. Each figi is
// read, fetched and appended on its own: a provider failure is recorded and
// the next figi proceeds, while a store failure ends the run.
func (e *Engine) SyncCandles(ctx context.Context, figis []string, table string) (*Report, error) {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if len(figis) == 0 {
		figis = e.cfg.CandleFigis
	}
	if table == "" {
		table = e.cfg.CandlesTable
	}

	report, projector, log := e.newRun(KindCandles, table)
	log.Info().Int("figis", len(figis)).Str("interval", string(e.fetcher.Interval())).Msg("Starting candle sync")

	err := e.syncCandles(ctx, figis, table, report, projector, log)
	e.finish(ctx, report, log, err)
	return report, err
}

func (e *Engine) syncCandles(ctx context.Context, figis []string, table string, report *Report, projector *projection.Projector, log zerolog.Logger) error {
	if err := e.ensureTable(ctx, table, projection.CandleColumns); err != nil {
		return err
	}

	for _, figi := range figis {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := e.syncFigi(ctx, figi, table, projector)
		report.Fetched += item.Fetched
		report.Appended += item.Appended
		report.Items = append(report.Items, item)
		if err != nil {
			return err
		}

		figiLog := log.With().Str("figi", figi).Logger()
		switch item.Outcome {
		case OutcomeNoData:
			figiLog.Info().Msg("No candle data")
		case OutcomeFailed:
			figiLog.Error().
				Str("tracking_id", item.TrackingID).
				Str("code", item.Code).
				Str("error", item.Error).
				Msg("Candle sync failed")
		default:
			figiLog.Info().Int("fetched", item.Fetched).Int("appended", item.Appended).Msg("Candles appended")
		}
	}
	return nil
}

// syncFigi handles one figi. Provider failures are reported in the item;
// the returned error is reserved for store failures and cancellation.
func (e *Engine) syncFigi(ctx context.Context, figi, table string, projector *projection.Projector) (ItemResult, error) {
	item := ItemResult{Item: figi}

	existing, err := e.store.ReadKeys(ctx, table, projection.CandleKeyColumn,
		domain.Filter{Column: projection.CandleFigiColumn, Value: figi})
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		return item, fmt.Errorf("failed to read existing candles of %s: %w", figi, err)
	}

	batch, err := projector.Candles(ctx, figi, e.fetcher.Fetch(ctx, figi))
	if errors.Is(err, domain.ErrNoData) {
		item.Outcome = OutcomeNoData
		return item, nil
	}
	if err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		annotate(&item, err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return item, ctxErr
		}
		return item, nil
	}

	item.Fetched = batch.Len()
	fresh, _ := batch.Exclude(projection.CandleKeyColumn, existing)
	item.Outcome = OutcomeAppended
	if fresh.Empty() {
		return item, nil
	}

	if err := e.store.AppendRows(ctx, table, fresh); err != nil {
		item.Outcome = OutcomeFailed
		item.Error = err.Error()
		return item, fmt.Errorf("failed to append candles of %s: %w", figi, err)
	}
	item.Appended = fresh.Len()
	return item, nil
}

// annotate copies the provider tracking id and code into item.
func annotate(item *ItemResult, err error) {
	if reqErr, ok := domain.AsRequestError(err); ok {
		item.TrackingID = reqErr.TrackingID
		item.Code = reqErr.CodeName()
	}
}
