// Package audit runs referential and structural integrity checks over one
// built BOM tree plus the external part and sourcing dictionaries.
//
// Checks are independent: each produces zero or more findings, a panic in
// one check is converted into a finding, and no check can suppress
// another. All findings accumulate into a single list - an integrity
// problem is data, never an exception.
//
// Every check is read-only over the snapshot it receives. The auditor
// owns no state between calls.
//
// Check codes:
//
//	A201 orphan part (not in part dictionary)          ERROR
//	A202 missing sourcing                              WARNING
//	A203 level gap (depth jump > 1 between rows)       ERROR
//	A204 structural mismatch of a reused assembly      ERROR
//	A205 non-production lifecycle state in use         WARNING
//	A206 circular assembly reference                   ERROR
//	A207 blank identifier at nonzero depth             WARNING
//	A208 sourcing row-count shortfall                  ERROR
//	A299 check aborted (internal panic)                ERROR
package audit
