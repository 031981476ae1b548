// Package storage provides the storage engine for Dew.
//
// The engine combines the in-memory store, the generation counter and the
// snapshot manager behind a single handle:
//
//   - Memory Store: the only source of truth between flushes
//   - Generation: advanced once after every successful mutation
//   - Snapshot: a JSON file written on a fixed interval and on shutdown
//
// Mutations made after the last snapshot are lost on a crash.
package storage
