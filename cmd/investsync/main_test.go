package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investsync/internal/domain"
	"github.com/aristath/investsync/internal/syncer"
)

// gateway fakes the instruments endpoints: one share, every other kind empty.
func gateway(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "InstrumentsService/Shares"):
			_, _ = w.Write([]byte(`{"instruments":[{"figi":"BBG004730N88","ticker":"SBER","currency":"rub","lot":10,"name":"Sberbank"}]}`))
		case strings.Contains(r.URL.Path, "InstrumentsService/"):
			_, _ = w.Write([]byte(`{"instruments":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":5,"message":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setEnv(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	for key, value := range map[string]string{
		"DATA_DIR":          dir,
		"READ_TOKEN":        "t.test",
		"INVEST_API_URL":    baseURL,
		"INVEST_RATE_LIMIT": "1ms",
		"STORE_DRIVER":      "sqlite",
		"STORE_DSN":         "",
		"KAFKA_BROKERS":     "",
		"BACKUP_BUCKET":     "",
		"LOG_LEVEL":         "error",
	} {
		t.Setenv(key, value)
	}
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSyncInstruments_EndToEnd(t *testing.T) {
	srv := gateway(t)
	setEnv(t, srv.URL)

	out, err := run(t, "sync", "instruments", "-o", "json")
	require.NoError(t, err)

	var report syncer.Report
	require.NoError(t, sonic.Unmarshal([]byte(out), &report))
	assert.Equal(t, syncer.KindInstruments, report.Kind)
	assert.Equal(t, 1, report.Appended)
	item, ok := report.Item(string(domain.KindShare))
	require.True(t, ok)
	assert.Equal(t, 1, item.Appended)

	// a second run finds nothing new
	out, err = run(t, "sync", "instruments", "-o", "json")
	require.NoError(t, err)
	report = syncer.Report{}
	require.NoError(t, sonic.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Appended)
}

func TestSync_RequiresToken(t *testing.T) {
	setEnv(t, "http://127.0.0.1:0")
	t.Setenv("READ_TOKEN", "")

	_, err := run(t, "sync", "instruments")
	assert.ErrorContains(t, err, "READ_TOKEN")
}

func TestMigrate_CreatesJournalAndStore(t *testing.T) {
	dir := setEnv(t, "http://127.0.0.1:0")
	t.Setenv("READ_TOKEN", "")

	_, err := run(t, "migrate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "journal.db"))
	assert.FileExists(t, filepath.Join(dir, "tinkoff.db"))
}

func TestRejectsUnknownOutputFormat(t *testing.T) {
	srv := gateway(t)
	setEnv(t, srv.URL)

	_, err := run(t, "accounts", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{
		{"sync", "instruments"},
		{"sync", "candles"},
		{"accounts"},
		{"portfolio"},
		{"operations"},
		{"money"},
		{"rate"},
		{"serve"},
		{"migrate"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	candles, _, err := root.Find([]string{"sync", "candles"})
	require.NoError(t, err)
	assert.NotNil(t, candles.Flags().Lookup("figi"))
	assert.NotNil(t, candles.Flags().Lookup("table"))
}

func TestPrintBatch(t *testing.T) {
	b := domain.NewBatch("figi", "close", "time", "nkd")
	b.Append("BBG000HS77T5", 114.25, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), nil)

	var table bytes.Buffer
	require.NoError(t, printBatch(&table, b, formatTable))
	lines := strings.Split(strings.TrimSpace(table.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"figi", "close", "time", "nkd"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"BBG000HS77T5", "114.25", "2026-01-02", "10:00:00"}, strings.Fields(lines[1]))

	var js bytes.Buffer
	require.NoError(t, printBatch(&js, b, formatJSON))
	var records []map[string]any
	require.NoError(t, sonic.Unmarshal(js.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 114.25, records[0]["close"])
	assert.Nil(t, records[0]["nkd"])
}

func TestPrintReport(t *testing.T) {
	started := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	r := &syncer.Report{
		RunID: "r1", Kind: syncer.KindCandles, Table: "candles",
		StartedAt: started, FinishedAt: started.Add(1500 * time.Millisecond),
		Fetched: 3, Appended: 2,
		Items: []syncer.ItemResult{
			{Item: "BBG000HS77T5", Outcome: syncer.OutcomeAppended, Fetched: 3, Appended: 2},
			{Item: "BBG000B9XRY4", Outcome: syncer.OutcomeFailed, Error: "limit", TrackingID: "abc"},
		},
	}

	var out bytes.Buffer
	require.NoError(t, printReport(&out, r, formatTable))
	text := out.String()
	assert.Contains(t, text, "run r1 (candles -> candles) in 1.5s: fetched 3, appended 2, duplicates 0")
	assert.Contains(t, text, "tracking id abc")
}
