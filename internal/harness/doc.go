// Package harness provides conformance testing for BOM analysis.
//
// The harness loads a scenario, builds the tree for its rows, optionally
// diffs against a revised row set, runs the integrity audit, and
// evaluates assertions as executable contract tests.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	columns:
//	  level: 0
//	  part_id: 1
//	rows:
//	  - ["0", "TOP", "top assembly", "A", "1"]
//	revised_rows:
//	  - ["0", "TOP", "top assembly", "A", "1"]
//	parts:
//	  - id: TOP
//	sourcing:
//	  TOP:
//	    - manufacturer: ACME
//	      manufacturer_pn: AC-100
//	non_production: [EOL, OBSOLETE]
//	run_token: fixed-token-for-goldens
//	assertions:
//	  - type: node_exists
//	    key: TOP/A
//	    expect: { quantity: "2" }
//	  - type: change_contains
//	    kind: MODIFIED
//	    key: TOP/A
//	    field: quantity
//	  - type: finding_count
//	    check: A201
//	    count: 1
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - node_exists: Verifies a location key is present with matching attributes
//   - node_count: Verifies the tree holds exactly N nodes
//   - change_contains: Verifies the diff produced a matching change record
//   - change_count: Verifies the diff produced exactly N changes
//   - finding_contains: Verifies the audit produced a matching finding
//   - finding_count: Verifies a check produced exactly N findings
//
// # Deterministic Testing
//
// All scenarios execute with fixed run tokens so the produced snapshots
// are byte-stable across runs, enabling golden file comparison via
// canonical JSON.
package harness
