// Package events publishes synchronization run events to a message stream.
package events

import (
	"time"

	"github.com/aristath/investsync/internal/syncer"
)

// EventType identifies an event on the stream
type EventType string

const (
	InstrumentsSynced EventType = "INSTRUMENTS_SYNCED"
	CandlesSynced     EventType = "CANDLES_SYNCED"
	SyncFailed        EventType = "SYNC_FAILED"
)

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// Event is the envelope written to the stream
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       EventData `json:"data"`
}

// RunData summarizes a finished run
type RunData struct {
	RunID      string   `json:"run_id"`
	Kind       string   `json:"kind"`
	Table      string   `json:"table"`
	Fetched    int      `json:"fetched"`
	Appended   int      `json:"appended"`
	Failed     int      `json:"failed"`
	NoData     int      `json:"no_data"`
	DurationMs int64    `json:"duration_ms"`
	Figis      []string `json:"figis,omitempty"`
}

// EventType returns the event type for RunData
func (d *RunData) EventType() EventType {
	if d.Kind == string(syncer.KindInstruments) {
		return InstrumentsSynced
	}
	return CandlesSynced
}

// SyncFailedData describes a run that stopped on a run-scoped error
type SyncFailedData struct {
	RunID string `json:"run_id"`
	Kind  string `json:"kind"`
	Table string `json:"table"`
	Error string `json:"error"`
}

// EventType returns the event type for SyncFailedData
func (d *SyncFailedData) EventType() EventType {
	return SyncFailed
}

// FromReport builds the event describing a finished run.
func FromReport(r *syncer.Report) Event {
	if r.Error != "" {
		return Event{
			Type:       SyncFailed,
			OccurredAt: r.FinishedAt,
			Data: &SyncFailedData{
				RunID: r.RunID,
				Kind:  string(r.Kind),
				Table: r.Table,
				Error: r.Error,
			},
		}
	}

	data := &RunData{
		RunID:      r.RunID,
		Kind:       string(r.Kind),
		Table:      r.Table,
		Fetched:    r.Fetched,
		Appended:   r.Appended,
		Failed:     r.Failed(),
		NoData:     r.NoData(),
		DurationMs: r.Duration().Milliseconds(),
	}
	if r.Kind == syncer.KindCandles {
		for _, it := range r.Items {
			if it.Appended > 0 {
				data.Figis = append(data.Figis, it.Item)
			}
		}
	}
	return Event{Type: data.EventType(), OccurredAt: r.FinishedAt, Data: data}
}
