package tasks

import (
	"time"

	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/services"
)

// Telemetry accumulates usage and throughput for one job.
//
// While the job runs RatePerMinute is a moving rate over roughly the last minute and ETA follows from it.
// Once finished RatePerMinute is the job average and ETA is zero.
type Telemetry struct {
	Mode           models.Mode   `json:"mode" yaml:"mode"`
	Cost           float64       `json:"cost" yaml:"cost"`
	InputUnits     int64         `json:"input_units" yaml:"input_units"`
	OutputUnits    int64         `json:"output_units" yaml:"output_units"`
	ItemsProcessed int           `json:"items_processed" yaml:"items_processed"`
	ItemsTotal     int           `json:"items_total" yaml:"items_total"`
	CacheHits      int           `json:"cache_hits" yaml:"cache_hits"`
	Requests       int           `json:"requests" yaml:"requests"`
	FailedChunks   int           `json:"failed_chunks" yaml:"failed_chunks"`
	Levels         int           `json:"levels" yaml:"levels"`
	Unresolved     []string      `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	StartedAt      time.Time     `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time     `json:"finished_at" yaml:"finished_at"`
	RatePerMinute  float64       `json:"rate_per_minute" yaml:"rate_per_minute"`
	ETA            time.Duration `json:"eta" yaml:"eta"`

	samples []rateSample
}

// rateWindow bounds how far back RatePerMinute looks.
const rateWindow = time.Minute

type rateSample struct {
	at        time.Time
	processed int
}

// Remaining is the number of items not yet resolved.
func (t *Telemetry) Remaining() int { return max(0, t.ItemsTotal-t.ItemsProcessed) }

// Elapsed is the job duration so far, or in total once finished.
func (t *Telemetry) Elapsed() time.Duration {
	if t.FinishedAt.IsZero() || t.StartedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}

func (t *Telemetry) addUsage(u services.Usage) {
	t.Cost += u.Cost
	t.InputUnits += u.InputUnits
	t.OutputUnits += u.OutputUnits
}

// tick recomputes the rate and ETA at now. The rate is measured against the newest sample at least
// rateWindow old, or the job start when there is none.
func (t *Telemetry) tick(now time.Time) {
	t.FinishedAt = now
	if len(t.samples) == 0 {
		t.samples = append(t.samples, rateSample{at: t.StartedAt})
	}
	t.samples = append(t.samples, rateSample{at: now, processed: t.ItemsProcessed})

	cut := now.Add(-rateWindow)
	i := 0
	for i+1 < len(t.samples) && !t.samples[i+1].at.After(cut) {
		i++
	}
	t.samples = t.samples[i:]

	base := t.samples[0]
	minutes := now.Sub(base.at).Minutes()
	delta := t.ItemsProcessed - base.processed
	if minutes <= 0 || delta <= 0 {
		t.RatePerMinute, t.ETA = 0, 0
		return
	}
	t.RatePerMinute = float64(delta) / minutes
	t.ETA = time.Duration(float64(t.Remaining()) / t.RatePerMinute * float64(time.Minute))
}

// snapshot copies t for a progress update.
func (t *Telemetry) snapshot() Telemetry {
	c := *t
	c.Unresolved = append([]string(nil), t.Unresolved...)
	c.samples = nil
	return c
}
