// Package tasks runs tagging jobs against the external tagging service with real-time progress reporting.
//
// # Core Operation
//
// [Scheduler.RunJob] enriches a list of tracks:
//
//  1. Optional cache pass: results stored by earlier jobs resolve tracks at no cost ([AnalysisCache])
//  2. Primary level: tracks are chunked and sent to the [services.Tagger] with at most Concurrency requests in
//     flight and an optional fixed delay between submissions
//  3. Retry levels: anything unresolved is re-chunked smaller and sent with lower concurrency. Year jobs escalate to
//     the authoritative strategy. The number of levels is capped.
//
// Results are validated against the vocabularies and merged through an [Applier] in completion order.
//
// # Concurrency
//
// Worker goroutines only call the tagger and hand results back over a channel. The goroutine that called RunJob is
// the only one that touches the document, the [Telemetry] and the retry list.
//
// # Failure Semantics
//
//   - a failed chunk (transport error, empty reply) goes to the retry list; it never aborts the job
//   - ids missing from a reply, or results that do not fill the gap, go to the retry list
//   - [shared.ErrCollaboratorUnavailable] stops the job immediately
//   - cancellation or the job timeout stops the job with [shared.ErrJobCancelled] and the telemetry so far
//   - items still unresolved after the last level are reported in [Telemetry.Unresolved]; the job is still complete
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and a telemetry snapshot for advanced UI
// rendering. Updates use select with default to prevent blocking.
package tasks
