package models

import (
	"fmt"
	"strings"
	"time"
)

// CachedAnalysis stores a tagging result keyed by the artist/title fingerprint so later jobs skip the service.
type CachedAnalysis struct {
	base
	fingerprint string
	analysis    Analysis
	strategy    Strategy
}

// NewCachedAnalysis creates a [CachedAnalysis] with timestamps set to now.
func NewCachedAnalysis(sequence int, fingerprint string, a Analysis, s Strategy) *CachedAnalysis {
	return &CachedAnalysis{base: newBase(sequence), fingerprint: fingerprint, analysis: a, strategy: s}
}

func (c *CachedAnalysis) Fingerprint() string { return c.fingerprint }
func (c *CachedAnalysis) Analysis() Analysis  { return c.analysis }
func (c *CachedAnalysis) Strategy() Strategy  { return c.strategy }

func (c *CachedAnalysis) SetAnalysis(a Analysis) { c.analysis = a }
func (c *CachedAnalysis) SetStrategy(s Strategy) { c.strategy = s }

func (c *CachedAnalysis) Validate() error {
	if c.id == "" {
		return fmt.Errorf("id is required")
	}
	if c.fingerprint == "" {
		return fmt.Errorf("fingerprint is required")
	}
	return nil
}

// Selection is a user-saved, ordered list of track ids. Synthesis places it under the saved selections folder.
type Selection struct {
	base
	name     string
	trackIDs []string
}

// NewSelection creates a [Selection]; duplicate and blank ids are dropped, first occurrence wins.
func NewSelection(sequence int, name string, trackIDs []string) *Selection {
	s := &Selection{base: newBase(sequence), name: strings.TrimSpace(name)}
	s.SetTrackIDs(trackIDs)
	return s
}

func (s *Selection) Name() string { return s.name }

// TrackIDs returns a copy of the ordered ids.
func (s *Selection) TrackIDs() []string {
	return append([]string(nil), s.trackIDs...)
}

func (s *Selection) SetName(name string) { s.name = strings.TrimSpace(name) }

func (s *Selection) SetTrackIDs(ids []string) {
	seen := make(map[string]struct{}, len(ids))
	s.trackIDs = make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.trackIDs = append(s.trackIDs, id)
	}
}

func (s *Selection) Validate() error {
	if s.id == "" {
		return fmt.Errorf("id is required")
	}
	if s.name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// JobStatus is the lifecycle state of a [TagJob].
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// TagJob records one tagging run with its final telemetry.
type TagJob struct {
	base
	sourcePath      string
	mode            Mode
	status          JobStatus
	itemsTotal      int
	itemsProcessed  int
	itemsUnresolved int
	cost            float64
	inputUnits      int64
	outputUnits     int64
	errorMessage    string
	startedAt       time.Time
	completedAt     *time.Time
}

// NewTagJob creates a running [TagJob] started now.
func NewTagJob(sequence int, sourcePath string, mode Mode) *TagJob {
	b := newBase(sequence)
	return &TagJob{base: b, sourcePath: sourcePath, mode: mode, status: JobStatusRunning, startedAt: b.createdAt}
}

func (j *TagJob) SourcePath() string      { return j.sourcePath }
func (j *TagJob) Mode() Mode              { return j.mode }
func (j *TagJob) Status() JobStatus       { return j.status }
func (j *TagJob) ItemsTotal() int         { return j.itemsTotal }
func (j *TagJob) ItemsProcessed() int     { return j.itemsProcessed }
func (j *TagJob) ItemsUnresolved() int    { return j.itemsUnresolved }
func (j *TagJob) Cost() float64           { return j.cost }
func (j *TagJob) InputUnits() int64       { return j.inputUnits }
func (j *TagJob) OutputUnits() int64      { return j.outputUnits }
func (j *TagJob) ErrorMessage() string    { return j.errorMessage }
func (j *TagJob) StartedAt() time.Time    { return j.startedAt }
func (j *TagJob) CompletedAt() *time.Time { return j.completedAt }

func (j *TagJob) SetStartedAt(t time.Time)    { j.startedAt = t }
func (j *TagJob) SetCompletedAt(t *time.Time) { j.completedAt = t }
func (j *TagJob) SetStatus(s JobStatus)       { j.status = s }
func (j *TagJob) SetErrorMessage(msg string)  { j.errorMessage = msg }

// SetCounts records item totals.
func (j *TagJob) SetCounts(total, processed, unresolved int) {
	j.itemsTotal, j.itemsProcessed, j.itemsUnresolved = total, processed, unresolved
}

// SetUsage records cost and unit totals reported by the tagging service.
func (j *TagJob) SetUsage(cost float64, in, out int64) {
	j.cost, j.inputUnits, j.outputUnits = cost, in, out
}

// Finish moves the job to a terminal status and stamps the completion time. A non-nil err becomes the error message.
func (j *TagJob) Finish(status JobStatus, err error) {
	now := time.Now()
	j.status = status
	j.completedAt = &now
	if err != nil {
		j.errorMessage = err.Error()
	}
}

// Duration is how long the job ran, or has been running.
func (j *TagJob) Duration() time.Duration {
	if j.completedAt != nil {
		return j.completedAt.Sub(j.startedAt)
	}
	return time.Since(j.startedAt)
}

func (j *TagJob) Validate() error {
	if j.id == "" {
		return fmt.Errorf("id is required")
	}
	if j.sourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	switch j.status {
	case JobStatusRunning, JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
	default:
		return fmt.Errorf("invalid status %q", j.status)
	}
	return nil
}
