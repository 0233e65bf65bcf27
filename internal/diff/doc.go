// Package diff compares two BOM trees into a change set.
//
// The engine walks the new tree in insertion order: keys absent from the
// old tree are ADDED, keys present in both are compared attribute by
// attribute and sourcing entry by sourcing entry, and keys left over in
// the old tree after the walk are REMOVED.
//
// Every key that produced a change record is direct. Each strict prefix
// of a direct key is impacted, unless it is itself direct - direct always
// wins over impacted at the same key. Ancestor impact tells a report
// renderer which assemblies contain a change without themselves changing.
//
// Change records carry a monotonically increasing id per invocation.
// Presentation ordering (by parent key, then id) belongs to the caller;
// the engine only guarantees a deterministic emission order.
//
// Diff is symmetric: swapping the inputs swaps ADDED and REMOVED and
// mirrors every MODIFIED record's before/after values.
package diff
