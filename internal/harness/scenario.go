package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bomgrid/internal/bom"
)

// Scenario defines a conformance test scenario.
// Scenarios build a tree from raw rows, optionally diff against a revised
// row set, run the integrity audit, and assert on the results.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are stored
	// under this name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Columns binds logical column names to cell indices.
	Columns map[string]int `yaml:"columns"`

	// Rows are the raw grid cells, exactly as exported from the sheet.
	Rows [][]string `yaml:"rows"`

	// RevisedRows, when present, is a second revision of the same sheet.
	// The harness diffs Rows against RevisedRows.
	RevisedRows [][]string `yaml:"revised_rows,omitempty"`

	// Parts is the part dictionary for the audit.
	Parts []bom.Part `yaml:"parts,omitempty"`

	// Sourcing maps part id to its approved-manufacturer list.
	Sourcing map[string][]bom.SourcingEntry `yaml:"sourcing,omitempty"`

	// NonProduction lists lifecycle states treated as production risks.
	NonProduction []string `yaml:"non_production,omitempty"`

	// PendingStatuses lists status tags exempt from the orphan check.
	// Defaults to ["NEW"].
	PendingStatuses []string `yaml:"pending_statuses,omitempty"`

	// RunToken is a fixed diff run token for deterministic golden files.
	// If empty, defaults to "test-run-default".
	RunToken string `yaml:"run_token,omitempty"`

	// Assertions validate the tree, change set, and findings.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates one aspect of a scenario result.
type Assertion struct {
	// Type specifies the assertion type:
	// - "node_exists": Check a location key is present with attributes
	// - "node_count": Check the tree holds exactly Count nodes
	// - "change_contains": Check the diff produced a matching record
	// - "change_count": Check the diff produced exactly Count changes
	// - "finding_contains": Check the audit produced a matching finding
	// - "finding_count": Check a check produced exactly Count findings
	Type string `yaml:"type"`

	// Key is a location key (node_exists, change_contains, finding_contains).
	Key string `yaml:"key,omitempty"`

	// Expect contains expected attribute values for node_exists.
	// Subset match - only specified fields are validated. Recognized
	// fields: description, revision, quantity, lifecycle, part_id.
	Expect map[string]string `yaml:"expect,omitempty"`

	// Kind is the expected change kind (change_contains).
	Kind string `yaml:"kind,omitempty"`

	// Field is the expected changed field (change_contains).
	Field string `yaml:"field,omitempty"`

	// Check is the check code (finding_contains, finding_count).
	Check string `yaml:"check,omitempty"`

	// PartID is the implicated part id (finding_contains).
	PartID string `yaml:"part_id,omitempty"`

	// Count is the expected number of occurrences (node_count,
	// change_count, finding_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertNodeExists      = "node_exists"
	AssertNodeCount       = "node_count"
	AssertChangeContains  = "change_contains"
	AssertChangeCount     = "change_count"
	AssertFindingContains = "finding_contains"
	AssertFindingCount    = "finding_count"
)

var validAssertionTypes = map[string]bool{
	AssertNodeExists:      true,
	AssertNodeCount:       true,
	AssertChangeContains:  true,
	AssertChangeCount:     true,
	AssertFindingContains: true,
	AssertFindingCount:    true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Columns) == 0 {
		return fmt.Errorf("columns is required")
	}
	if len(s.Rows) == 0 {
		return fmt.Errorf("rows is required")
	}

	for i, a := range s.Assertions {
		if !validAssertionTypes[a.Type] {
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
		switch a.Type {
		case AssertNodeExists:
			if a.Key == "" {
				return fmt.Errorf("assertion %d: node_exists requires key", i)
			}
		case AssertChangeContains, AssertChangeCount:
			if len(s.RevisedRows) == 0 {
				return fmt.Errorf("assertion %d: %s requires revised_rows", i, a.Type)
			}
		case AssertFindingContains:
			if a.Check == "" {
				return fmt.Errorf("assertion %d: finding_contains requires check", i)
			}
		case AssertFindingCount:
			if a.Check == "" {
				return fmt.Errorf("assertion %d: finding_count requires check", i)
			}
		}
	}

	return nil
}

// columnMap converts the scenario's column binding to a bom.ColumnMap.
func (s *Scenario) columnMap() bom.ColumnMap {
	columns := make(bom.ColumnMap, len(s.Columns))
	for name, idx := range s.Columns {
		columns[bom.Column(name)] = idx
	}
	return columns
}

// grid converts raw scenario rows to a bom.Grid.
func grid(rows [][]string) bom.Grid {
	g := make(bom.Grid, len(rows))
	for i, row := range rows {
		g[i] = bom.Row(row)
	}
	return g
}
