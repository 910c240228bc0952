// Package events carries run progress from the batch runner to whoever is
// watching it.
//
// The runner never prints. It emits ProgressEvent values through an
// EventEmitter, and presentation is left to registered handlers:
// - ProgressEvent: one step of a run (run started, task started/finished, ...)
// - EventHandler: interface for components that react to progress
// - EventEmitter: interface for components that publish progress
// - Dispatcher: synchronous EventEmitter fanning out to subscribers
// - ConsoleHandler: renders progress as the human-readable batch report
package events
