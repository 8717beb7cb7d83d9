package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a tagging job.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Job phase
	Step    int    // Items resolved so far
	Total   int    // Items in the job
	Message string // Human-readable message for display
	Data    any    // Optional [Telemetry] snapshot for advanced UIs
}

// Job phase enumeration
type Phase int

const (
	LookupCache Phase = iota
	SubmitChunks
	MergeResults
	Escalate
	Complete
)

func (p Phase) String() string {
	switch p {
	case LookupCache:
		return "lookup_cache"
	case SubmitChunks:
		return "submit_chunks"
	case MergeResults:
		return "merge_results"
	case Escalate:
		return "escalate"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func cacheUpdate(tel Telemetry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupCache,
		Step:    tel.ItemsProcessed,
		Total:   tel.ItemsTotal,
		Message: fmt.Sprintf("Resolved %d tracks from cache", tel.CacheHits),
		Data:    tel,
	}
}

func levelUpdate(tel Telemetry, level, pending, chunks int) ProgressUpdate {
	phase, msg := SubmitChunks, fmt.Sprintf("Tagging %d tracks in %d chunks...", pending, chunks)
	if level > 0 {
		phase = Escalate
		msg = fmt.Sprintf("Retry level %d: %d tracks in %d chunks...", level, pending, chunks)
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    tel.ItemsProcessed,
		Total:   tel.ItemsTotal,
		Message: msg,
		Data:    tel,
	}
}

func chunkMergedUpdate(tel Telemetry, resolved, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeResults,
		Step:    tel.ItemsProcessed,
		Total:   tel.ItemsTotal,
		Message: fmt.Sprintf("[%d/%d] ✓ chunk resolved %d of %d", tel.ItemsProcessed, tel.ItemsTotal, resolved, size),
		Data:    tel,
	}
}

func chunkFailedUpdate(tel Telemetry, size int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeResults,
		Step:    tel.ItemsProcessed,
		Total:   tel.ItemsTotal,
		Message: fmt.Sprintf("[%d/%d] ✗ chunk of %d failed: %v", tel.ItemsProcessed, tel.ItemsTotal, size, err),
		Data:    tel,
	}
}

func completeUpdate(tel Telemetry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    tel.ItemsProcessed,
		Total:   tel.ItemsTotal,
		Message: fmt.Sprintf("Tagged %d of %d tracks (%d unresolved)", tel.ItemsProcessed, tel.ItemsTotal, len(tel.Unresolved)),
		Data:    tel,
	}
}
