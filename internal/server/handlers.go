package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/investsync/internal/database"
	"github.com/aristath/investsync/internal/runlog"
	"github.com/aristath/investsync/internal/syncer"
)

// SystemStatus is the /api/system response
type SystemStatus struct {
	Status        string                     `json:"status"`
	UptimeSeconds int64                      `json:"uptime_seconds"`
	Goroutines    int                        `json:"goroutines"`
	CPUPercent    float64                    `json:"cpu_percent"`
	MemPercent    float64                    `json:"mem_percent"`
	Databases     map[string]*database.Stats `json:"databases"`
	Jobs          []string                   `json:"jobs,omitempty"`
}

// CandlesRequest is the optional body of POST /api/sync/candles
type CandlesRequest struct {
	Figis []string `json:"figis"`
	Table string   `json:"table"`
}

// handleHealth reports unhealthy when any local database fails its check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	for _, db := range s.databases {
		if err := db.HealthCheck(r.Context()); err != nil {
			s.log.Error().Err(err).Str("database", db.Name()).Msg("Health check failed")
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": db.Name(),
				"error":    err.Error(),
			})
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "investsync",
	})
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := s.getSystemStats()

	status := SystemStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		CPUPercent:    cpuPercent,
		MemPercent:    memPercent,
		Databases:     make(map[string]*database.Stats, len(s.databases)),
	}
	for _, db := range s.databases {
		stats, err := db.GetStats(r.Context())
		if err != nil {
			s.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to get database stats")
			continue
		}
		status.Databases[db.Name()] = stats
	}
	if s.jobs != nil {
		status.Jobs = s.jobs.Jobs()
	}

	s.writeJSON(w, http.StatusOK, status)
}

// getSystemStats samples CPU over 100ms and returns CPU and RAM usage percentages
func (s *Server) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// handleListRuns serves GET /api/runs?kind=candles&limit=20
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	kind := syncer.Kind(r.URL.Query().Get("kind"))
	switch kind {
	case "", syncer.KindInstruments, syncer.KindCandles:
	default:
		s.writeError(w, http.StatusBadRequest, "unknown kind "+string(kind))
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.runs.List(r.Context(), kind, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list runs")
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []runlog.Summary{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.runs.Get(r.Context(), id)
	if errors.Is(err, runlog.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("run_id", id).Msg("Failed to get run")
		s.writeError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSyncInstruments(w http.ResponseWriter, r *http.Request) {
	s.log.Info().Msg("Manual instruments sync triggered")
	s.runInBackground(r, func(ctx context.Context) (*syncer.Report, error) {
		return s.engine.SyncInstruments(ctx)
	})
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "instruments sync started",
	})
}

// handleSyncCandles accepts an empty body for the configured figis
func (s *Server) handleSyncCandles(w http.ResponseWriter, r *http.Request) {
	var req CandlesRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	s.log.Info().Strs("figis", req.Figis).Str("table", req.Table).Msg("Manual candles sync triggered")
	s.runInBackground(r, func(ctx context.Context) (*syncer.Report, error) {
		return s.engine.SyncCandles(ctx, req.Figis, req.Table)
	})
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "accepted",
		"message": "candles sync started",
	})
}

// runInBackground detaches the run from the request; the result lands in
// the run journal.
func (s *Server) runInBackground(r *http.Request, run func(ctx context.Context) (*syncer.Report, error)) {
	reqID := middleware.GetReqID(r.Context())
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.runTimeout)

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		defer cancel()

		report, err := run(ctx)
		if err != nil {
			s.log.Error().Err(err).Str("request_id", reqID).Msg("Triggered run failed")
			return
		}
		s.log.Info().
			Str("request_id", reqID).
			Str("run_id", report.RunID).
			Int("appended", report.Appended).
			Msg("Triggered run finished")
	}()
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	payload, err := sonic.Marshal(data)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
