// Package models defines the value types and persistent entities shared across digger.
//
// The package contains two categories of types:
//
// 1. Value types: plain structs and enums passed between the document model, the scheduler and the tagging service
//   - [Analysis] : validated tag set for one track
//   - [Mode] : which gap a tagging job fills (full, genre, year)
//   - [Strategy] : resolution policy hint sent to the tagging service
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [CachedAnalysis] : analysis results keyed by artist/title fingerprint
//   - [Selection] : a user-saved ad-hoc playlist
//   - [TagJob] : tagging job history with telemetry and status
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
