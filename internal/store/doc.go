// Package store provides the SQLite-backed generation ledger.
//
// Every generate invocation is recorded as a run, and every file the run
// writes is recorded with its digest, so a later run can tell which outputs
// changed and the history command can show what was produced from which
// inputs.
//
// # Tables
//
//   - runs: one row per generate invocation (id, seq, timestamps, status, inputs)
//   - files: one row per written file (run_id, seq, path, digest, ...)
//
// # Ordering
//
// Runs and files carry a seq INTEGER assigned by the store. All listings
// order by seq, never by timestamps, so history is stable even when the
// wall clock moves backwards.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
