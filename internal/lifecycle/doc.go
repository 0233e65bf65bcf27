// Package lifecycle implements the part lifecycle state machine.
//
// A Policy declares a closed set of states, a forward-transition table,
// terminal states, and the non-production set. The Governor validates
// edits against the policy:
//
//   - equal states are a valid no-op
//   - a blank current state accepts any declared state as the initial
//     assignment
//   - a table-permitted move is a FORWARD transition
//   - a move between two recognized states outside the table is a
//     deviation: rejected as a plain transition, acceptable only with an
//     external authorization reference, then logged as DEVIATION
//   - anything involving an unrecognized state is rejected outright
//
// Rejections are results, not errors: state is left unchanged and the
// caller gets a human-readable reason. Every committed transition yields
// a TransitionRecord for the external history store; rejected ones never
// do.
package lifecycle
