package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/syncer"
)

type mockEngine struct {
	syncInstrumentsFn func(ctx context.Context) (*syncer.Report, error)
	syncCandlesFn     func(ctx context.Context, figis []string, table string) (*syncer.Report, error)
}

func (m *mockEngine) SyncInstruments(ctx context.Context) (*syncer.Report, error) {
	return m.syncInstrumentsFn(ctx)
}

func (m *mockEngine) SyncCandles(ctx context.Context, figis []string, table string) (*syncer.Report, error) {
	return m.syncCandlesFn(ctx, figis, table)
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func TestScheduler_AddJobAndRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{name: "a"}

	require.NoError(t, s.AddJob("0 */5 * * * *", job))
	require.NoError(t, s.AddJob("", &countingJob{name: "b"}))

	assert.Equal(t, []string{"a", "b"}, s.Jobs())
	require.NoError(t, s.RunNow("a"))
	assert.Equal(t, 1, job.runs)
}

func TestScheduler_RejectsDuplicatesAndBadSchedules(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "a"}))
	assert.Error(t, s.AddJob("@hourly", &countingJob{name: "a"}))
	assert.Error(t, s.AddJob("not a schedule", &countingJob{name: "b"}))
	assert.Equal(t, []string{"a"}, s.Jobs())
}

func TestScheduler_RunNowErrors(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("", &countingJob{name: "a", err: errors.New("boom")}))

	assert.EqualError(t, s.RunNow("a"), "boom")
	assert.Error(t, s.RunNow("missing"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 1h", &countingJob{name: "a"}))
	s.Start()
	s.Stop()
}

func TestInstrumentsSyncJob(t *testing.T) {
	calls := 0
	engine := &mockEngine{syncInstrumentsFn: func(ctx context.Context) (*syncer.Report, error) {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return &syncer.Report{RunID: "r1", Appended: 2}, nil
	}}

	job := NewInstrumentsSyncJob(engine, zerolog.Nop())
	assert.Equal(t, JobSyncInstruments, job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 1, calls)

	engine.syncInstrumentsFn = func(context.Context) (*syncer.Report, error) {
		return &syncer.Report{}, errors.New("store down")
	}
	assert.ErrorContains(t, job.Run(), "store down")
}

func TestCandlesSyncJob(t *testing.T) {
	var gotFigis []string
	var gotTable string
	engine := &mockEngine{syncCandlesFn: func(_ context.Context, figis []string, table string) (*syncer.Report, error) {
		gotFigis, gotTable = figis, table
		return &syncer.Report{Items: []syncer.ItemResult{
			{Item: figis[0], Outcome: syncer.OutcomeFailed},
		}}, nil
	}}

	job := NewCandlesSyncJob(engine, []string{"BBG000HS77T5"}, "candles", zerolog.Nop())
	assert.Equal(t, JobSyncCandles, job.Name())

	// provider failures for single figis are recorded in the report, not returned
	require.NoError(t, job.Run())
	assert.Equal(t, []string{"BBG000HS77T5"}, gotFigis)
	assert.Equal(t, "candles", gotTable)
}

func TestRunnerJobs(t *testing.T) {
	ran := false
	backup := NewBackupJob(runnerFunc(func(context.Context) error {
		ran = true
		return nil
	}))
	assert.Equal(t, JobStoreBackup, backup.Name())
	require.NoError(t, backup.Run())
	assert.True(t, ran)

	maintenance := NewMaintenanceJob(runnerFunc(func(context.Context) error {
		return errors.New("integrity")
	}))
	assert.Equal(t, JobStoreMaintenance, maintenance.Name())
	assert.EqualError(t, maintenance.Run(), "integrity")
}
