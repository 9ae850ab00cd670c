// Package internal contains the implementation packages of cloudsync.
//
// # Package Organization
//
//   - aggregate: folder walk, source filter, ignore file and concatenation
//   - syntax: per-file syntax check
//   - bundle: single-module bundling of the aggregated source
//   - cloud: HTTP client for the savecloud and userServers endpoints
//   - watcher: recursive fsnotify watcher with optional debouncing
//   - trigger: event, keypress and single-shot sync sources
//   - orchestrator: the sync state machine, one cycle at a time
//   - prompt, console: interactive input and status output
//   - config, validation: configuration loading and checks
//   - errors, logging, reporting: typed errors, structured logs and
//     error tracking
//   - version: build information
//
// # Data Flow
//
// A trigger source fires, the orchestrator starts a cycle when idle, the
// aggregator produces the concatenated source, the orchestrator writes it
// to the artifact file, the bundler turns it into one module and the cloud
// client uploads it. The artifact is removed before and after every cycle.
package internal
