package syncer

import "time"

// Kind names the collection a run synchronizes.
type Kind string

const (
	KindInstruments Kind = "instruments"
	KindCandles     Kind = "candles"
)

// Outcome is the result of one item of a run.
type Outcome string

const (
	OutcomeAppended Outcome = "appended"
	OutcomeNoData   Outcome = "no_data"
	OutcomeFailed   Outcome = "failed"
)

// ItemResult is the outcome for one instrument kind (instrument runs) or
// one figi (candle runs).
type ItemResult struct {
	Item       string  `msgpack:"item" json:"item"`
	Outcome    Outcome `msgpack:"outcome" json:"outcome"`
	Fetched    int     `msgpack:"fetched" json:"fetched"`
	Appended   int     `msgpack:"appended" json:"appended"`
	Error      string  `msgpack:"error,omitempty" json:"error,omitempty"`
	TrackingID string  `msgpack:"tracking_id,omitempty" json:"tracking_id,omitempty"`
	Code       string  `msgpack:"code,omitempty" json:"code,omitempty"`
}

// Report summarizes a synchronization run. Error is set when the run
// stopped on a run-scoped failure such as an unreachable store.
type Report struct {
	RunID      string       `msgpack:"run_id" json:"run_id"`
	Kind       Kind         `msgpack:"kind" json:"kind"`
	Table      string       `msgpack:"table" json:"table"`
	StartedAt  time.Time    `msgpack:"started_at" json:"started_at"`
	FinishedAt time.Time    `msgpack:"finished_at" json:"finished_at"`
	Fetched    int          `msgpack:"fetched" json:"fetched"`
	Appended   int          `msgpack:"appended" json:"appended"`
	Duplicates int          `msgpack:"duplicates" json:"duplicates"`
	Items      []ItemResult `msgpack:"items" json:"items"`
	Error      string       `msgpack:"error,omitempty" json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failed returns the number of failed items.
func (r *Report) Failed() int {
	return r.count(OutcomeFailed)
}

// NoData returns the number of items that had nothing to fetch.
func (r *Report) NoData() int {
	return r.count(OutcomeNoData)
}

// Item returns the result recorded for item, if any.
func (r *Report) Item(item string) (ItemResult, bool) {
	for _, it := range r.Items {
		if it.Item == item {
			return it, true
		}
	}
	return ItemResult{}, false
}

func (r *Report) count(o Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}
