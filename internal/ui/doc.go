// Package ui implements a terminal job monitor using bubbletea's Elm architecture.
//
// The monitor has two views:
//  1. [JobView] : a spinner, a progress bar and live telemetry while the scheduler tags tracks
//  2. [ResultView] : the final telemetry and a browsable list of tracks left unresolved
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from [tasks.Scheduler.RunJob]; the scheduler never blocks on a slow UI,
// so the monitor may skip intermediate updates.
//
// Pressing q while a job runs cancels it; the monitor waits for the partial result before exiting.
// Keyboard navigation uses vim-style bindings (j/k, ?, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
