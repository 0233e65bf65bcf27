// Package bom implements the hierarchical bill-of-materials model.
//
// The package converts flat, depth-indented row grids into an addressable
// tree: each assembly node is keyed by its location key, the chain of
// ancestor part identifiers joined by "/". The same part id may appear at
// many location keys; a key addresses a position, not an identity.
//
// ARCHITECTURE:
//
// Single-Pass Construction:
// Build scans the grid exactly once, maintaining a depth-indexed path
// stack. The stack is local to one call - there is no shared mutable
// state, and a Tree is an immutable snapshot once returned.
//
// Location Key Closure:
// Every strict prefix of an emitted location key is itself a key in the
// same tree. Depth jumps in the input (level gaps) are recorded on the
// node's declared depth but clamped when the key is formed, so closure
// holds even for malformed grids. Gaps are reported by the audit layer,
// never silently corrected away.
//
// Continuation Rows:
// A row with a blank part identifier that carries manufacturer data is a
// sourcing continuation for the node above it. A blank row without
// manufacturer data is inert. This heuristic is deliberately the only
// place continuation rows are recognized, so diffing and auditing always
// agree on sourcing attachment.
//
// Fail-Fast Columns:
// All required columns are resolved before any row is read. A grid with
// an unresolvable required column fails the whole build with a
// StructuralError - a tree is never partially constructed.
package bom
