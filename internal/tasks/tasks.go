// package tasks implements tagging jobs against the external tagging service.
package tasks

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/digger/internal/collection"
	"github.com/desertthunder/digger/internal/models"
	"github.com/desertthunder/digger/internal/services"
	"github.com/desertthunder/digger/internal/shared"
)

// Defaults applied by [Options.normalize].
const (
	DefaultChunkSize   = 100
	DefaultConcurrency = 4
	DefaultMaxLevels   = 3
	MaxLevelsCap       = 5
)

// Applier merges a validated analysis into a track. [*collection.Document] implements it.
type Applier interface {
	Apply(t *collection.Track, a models.Analysis, mode models.Mode) []string
}

// AnalysisCache stores results between jobs, keyed by track fingerprint.
//
// Implementations swallow their own write failures; a cache problem must not fail a job.
type AnalysisCache interface {
	Lookup(fingerprint string) (models.Analysis, bool)
	Store(fingerprint string, a models.Analysis, s models.Strategy)
}

// Options sizes a [Scheduler].
type Options struct {
	ChunkSize        int           // items per primary request
	Concurrency      int           // primary requests in flight
	Delay            time.Duration // minimum spacing between submissions, 0 for none
	RetryChunkSize   int           // items per request on the first retry level, halved on each later level
	RetryConcurrency int           // requests in flight on retry levels
	MaxLevels        int           // total levels including the primary pass
	JobTimeout       time.Duration // budget for the whole job, 0 for none

	Cache  AnalysisCache
	Logger *log.Logger
	Clock  func() time.Time
}

// OptionsFromConfig maps the [scheduler] config section onto Options.
func OptionsFromConfig(cfg shared.SchedulerConfig) Options {
	return Options{
		ChunkSize:        cfg.ChunkSize,
		Concurrency:      cfg.Concurrency,
		Delay:            cfg.Delay(),
		RetryChunkSize:   cfg.RetryChunkSize,
		RetryConcurrency: cfg.RetryConcurrency,
		MaxLevels:        cfg.MaxLevels,
		JobTimeout:       cfg.JobTimeout(),
	}
}

func (o Options) normalize() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RetryChunkSize <= 0 {
		o.RetryChunkSize = max(1, o.ChunkSize/4)
	}
	if o.RetryConcurrency <= 0 {
		o.RetryConcurrency = max(1, o.Concurrency/2)
	}
	if o.MaxLevels <= 0 {
		o.MaxLevels = DefaultMaxLevels
	}
	o.MaxLevels = min(o.MaxLevels, MaxLevelsCap)
	if o.Logger == nil {
		o.Logger = shared.DiscardLogger()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// level returns the chunk size, width and strategy for escalation level n (0 is the primary pass).
func (o Options) level(n int, mode models.Mode) (size, width int, strategy models.Strategy) {
	if n == 0 {
		return o.ChunkSize, o.Concurrency, models.StrategyStandard
	}
	size = max(1, o.RetryChunkSize>>(n-1))
	strategy = models.StrategyStandard
	if mode == models.ModeMissingYear {
		strategy = models.StrategyAuthoritative
	}
	return size, o.RetryConcurrency, strategy
}

// Scheduler runs tagging jobs. It is safe to reuse for consecutive jobs but not for concurrent ones on one document.
type Scheduler struct {
	tagger services.Tagger
	doc    Applier
	opts   Options
}

// NewScheduler creates a [Scheduler]. A nil tagger makes every job fail with [shared.ErrCollaboratorUnavailable].
func NewScheduler(tagger services.Tagger, doc Applier, opts Options) *Scheduler {
	return &Scheduler{tagger: tagger, doc: doc, opts: opts.normalize()}
}

// Options returns the effective options after defaults.
func (s *Scheduler) Options() Options { return s.opts }

// SelectPending picks the tracks a job in mode should enrich: tracks without an analysis for full jobs, without a
// genre for genre jobs and without a year (empty or 0) for year jobs.
func SelectPending(tracks []*collection.Track, mode models.Mode) []*collection.Track {
	var out []*collection.Track
	for _, t := range tracks {
		var pending bool
		switch mode {
		case models.ModeMissingGenre:
			pending = !t.HasGenre()
		case models.ModeMissingYear:
			pending = !t.HasYear()
		default:
			_, has := t.Analysis()
			pending = !has
		}
		if pending {
			out = append(out, t)
		}
	}
	return out
}

// sendProgress sends a progress update without blocking.
func (s *Scheduler) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func toItem(t *collection.Track) services.Item {
	return services.Item{
		ID:       t.ID(),
		Name:     t.Name(),
		Artist:   t.Artist(),
		Bpm:      t.Bpm(),
		Key:      t.Key(),
		Comments: t.Comments(),
	}
}
