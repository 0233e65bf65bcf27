package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bomgrid/internal/audit"
	"github.com/roach88/bomgrid/internal/bom"
	"github.com/roach88/bomgrid/internal/diff"
)

// DefaultRunToken is used when a scenario omits run_token. A fixed token
// keeps golden snapshots byte-stable.
const DefaultRunToken = "test-run-default"

// Result holds everything a scenario produced, for assertions and golden
// snapshots.
type Result struct {
	// Pass is false when any assertion failed.
	Pass bool

	// Errors collects assertion failures.
	Errors []error

	// Tree is the built tree for the scenario's rows.
	Tree *bom.Tree

	// Changes is the diff against revised_rows; nil when the scenario has
	// no revision.
	Changes *diff.ChangeSet

	// Findings are the audit results for the (original) tree.
	Findings []audit.Finding
}

// Harness executes one scenario with deterministic run tokens.
type Harness struct {
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Build the tree for the scenario's rows
//  2. Diff against revised_rows when present
//  3. Run the integrity audit
//  4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(scenario)
}

func (h *Harness) run(scenario *Scenario) (*Result, error) {
	columns := scenario.columnMap()
	rows := grid(scenario.Rows)

	tree, err := bom.Build(rows, columns, bom.BuildOptions{})
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	h.logger.Debug("tree built", "scenario", scenario.Name, "nodes", tree.Len())

	result := &Result{Pass: true, Tree: tree}

	if len(scenario.RevisedRows) > 0 {
		token := scenario.RunToken
		if token == "" {
			token = DefaultRunToken
		}
		engine := diff.New(diff.NewFixedGenerator(token))
		result.Changes, err = engine.Compare(rows, grid(scenario.RevisedRows), columns, bom.BuildOptions{})
		if err != nil {
			return nil, fmt.Errorf("diff: %w", err)
		}
		h.logger.Debug("diff complete", "changes", len(result.Changes.Changes))
	}

	result.Findings = audit.Audit(tree, h.partDictionary(scenario), scenario.Sourcing, audit.Options{
		NonProductionStates: stringSet(scenario.NonProduction),
		PendingStatuses:     pendingSet(scenario.PendingStatuses),
	})
	h.logger.Debug("audit complete", "findings", len(result.Findings))

	for _, assertion := range scenario.Assertions {
		if err := evaluateAssertion(result, assertion); err != nil {
			result.Pass = false
			result.Errors = append(result.Errors, err)
		}
	}

	return result, nil
}

func (h *Harness) partDictionary(scenario *Scenario) bom.PartDictionary {
	parts := make(bom.PartDictionary, len(scenario.Parts))
	for _, p := range scenario.Parts {
		parts[p.ID] = p
	}
	return parts
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func pendingSet(statuses []string) map[string]bool {
	if len(statuses) == 0 {
		statuses = []string{"NEW"}
	}
	return stringSet(statuses)
}
