// Package history provides SQLite-backed durable storage for lifecycle
// transitions and diff change logs.
//
// The store implements an append-only log with:
//   - Lifecycle Transitions: committed state changes per part
//   - Change Log: change records grouped by diff run token
//
// Ordering is logical: transitions sort by seq (clock ticks), change
// records by their in-run id. Timestamps are stored for audit display
// only and never participate in ordering.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Writes use ON CONFLICT DO NOTHING so replaying a run or re-committing
// a transition record is a safe no-op.
package history
