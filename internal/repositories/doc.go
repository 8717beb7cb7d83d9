// Package repositories implements SQLite persistence for digger's stored entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Job history is soft-deleted via deleted_at timestamps and deleted records are excluded from queries by default.
// Cached analyses and selections are keyed by unique values and are removed outright so the key can be reused.
//
// Key Implementations:
//   - [AnalysisRepository] : tagging results keyed by artist/title fingerprint
//   - [AnalysisCacheAdapter] : the scheduler's cache, backed by [AnalysisRepository]
//   - [SelectionRepository] : user-saved track selections with ordered membership in selection_tracks
//   - [JobRepository] : tagging job history with status, counters and usage
//
// Sequence numbers provide stable, human-readable ordering (e.g., job #42, selection #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
