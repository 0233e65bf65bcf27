package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/bomgrid/internal/bom"
	"github.com/roach88/bomgrid/internal/diff"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// evaluateAssertion dispatches one assertion against a result.
func evaluateAssertion(result *Result, assertion Assertion) error {
	switch assertion.Type {
	case AssertNodeExists:
		return assertNodeExists(result.Tree, assertion)
	case AssertNodeCount:
		return assertNodeCount(result.Tree, assertion)
	case AssertChangeContains:
		return assertChangeContains(result.Changes, assertion)
	case AssertChangeCount:
		return assertChangeCount(result.Changes, assertion)
	case AssertFindingContains:
		return assertFindingContains(result, assertion)
	case AssertFindingCount:
		return assertFindingCount(result, assertion)
	default:
		return fmt.Errorf("unknown assertion type: %q", assertion.Type)
	}
}

// assertNodeExists checks a location key is present, with optional
// attribute subset matching.
func assertNodeExists(tree *bom.Tree, assertion Assertion) error {
	node, ok := tree.Get(assertion.Key)
	if !ok {
		return &AssertionError{
			Type:     AssertNodeExists,
			Expected: fmt.Sprintf("node at key %q", assertion.Key),
			Actual:   fmt.Sprintf("key absent; tree has %v", tree.Keys()),
		}
	}

	for field, want := range assertion.Expect {
		got, err := nodeField(node, field)
		if err != nil {
			return err
		}
		if got != want {
			return &AssertionError{
				Type:     AssertNodeExists,
				Expected: fmt.Sprintf("%s=%q at key %q", field, want, assertion.Key),
				Actual:   fmt.Sprintf("%s=%q", field, got),
			}
		}
	}
	return nil
}

func nodeField(node *bom.Node, field string) (string, error) {
	switch field {
	case "part_id":
		return node.PartID, nil
	case "description":
		return node.Attrs.Description, nil
	case "revision":
		return node.Attrs.Revision, nil
	case "quantity":
		return node.Attrs.Quantity, nil
	case "lifecycle":
		return node.Attrs.Lifecycle, nil
	case "status":
		return node.StatusTag, nil
	default:
		return "", fmt.Errorf("node_exists: unknown field %q", field)
	}
}

func assertNodeCount(tree *bom.Tree, assertion Assertion) error {
	if tree.Len() != assertion.Count {
		return &AssertionError{
			Type:     AssertNodeCount,
			Expected: fmt.Sprintf("%d node(s)", assertion.Count),
			Actual:   fmt.Sprintf("%d node(s): %v", tree.Len(), tree.Keys()),
		}
	}
	return nil
}

// assertChangeContains checks the diff produced a record matching the
// assertion's kind, key, and field (subset semantics: empty means any).
func assertChangeContains(changes *diff.ChangeSet, assertion Assertion) error {
	for _, rec := range changes.Changes {
		if assertion.Kind != "" && string(rec.Kind) != assertion.Kind {
			continue
		}
		if assertion.Key != "" && rec.Key != assertion.Key {
			continue
		}
		if assertion.Field != "" && rec.Field != assertion.Field {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertChangeContains,
		Expected: fmt.Sprintf("change kind=%q key=%q field=%q", assertion.Kind, assertion.Key, assertion.Field),
		Actual:   fmt.Sprintf("not found among %d change(s)", len(changes.Changes)),
	}
}

func assertChangeCount(changes *diff.ChangeSet, assertion Assertion) error {
	if len(changes.Changes) != assertion.Count {
		return &AssertionError{
			Type:     AssertChangeCount,
			Expected: fmt.Sprintf("%d change(s)", assertion.Count),
			Actual:   fmt.Sprintf("%d change(s)", len(changes.Changes)),
		}
	}
	return nil
}

// assertFindingContains checks the audit produced a finding matching the
// assertion's check code, key, and part id (subset semantics).
func assertFindingContains(result *Result, assertion Assertion) error {
	for _, f := range result.Findings {
		if f.Check != assertion.Check {
			continue
		}
		if assertion.Key != "" && f.Key != assertion.Key {
			continue
		}
		if assertion.PartID != "" && f.PartID != assertion.PartID {
			continue
		}
		return nil
	}

	return &AssertionError{
		Type:     AssertFindingContains,
		Expected: fmt.Sprintf("finding check=%q key=%q part_id=%q", assertion.Check, assertion.Key, assertion.PartID),
		Actual:   fmt.Sprintf("not found among %d finding(s)", len(result.Findings)),
	}
}

func assertFindingCount(result *Result, assertion Assertion) error {
	count := 0
	for _, f := range result.Findings {
		if f.Check == assertion.Check {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertFindingCount,
			Expected: fmt.Sprintf("%d finding(s) for check %s", assertion.Count, assertion.Check),
			Actual:   fmt.Sprintf("%d finding(s)", count),
		}
	}
	return nil
}
