package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgrid/internal/audit"
	"github.com/roach88/bomgrid/internal/bom"
	"github.com/roach88/bomgrid/internal/diff"
	"github.com/roach88/bomgrid/internal/testutil"
)

func twoLevelResult(t *testing.T) *Result {
	t.Helper()
	tree, err := bom.Build(testutil.Grid(
		testutil.PartRow("0", "TOP", "1"),
		testutil.PartRow("1", "A", "2"),
	), testutil.StdColumns(), bom.BuildOptions{})
	require.NoError(t, err)
	return &Result{Pass: true, Tree: tree}
}

func TestAssertNodeExists(t *testing.T) {
	result := twoLevelResult(t)

	err := evaluateAssertion(result, Assertion{Type: AssertNodeExists, Key: "TOP/A"})
	assert.NoError(t, err)

	err = evaluateAssertion(result, Assertion{
		Type:   AssertNodeExists,
		Key:    "TOP/A",
		Expect: map[string]string{"part_id": "A", "quantity": "2", "revision": "A"},
	})
	assert.NoError(t, err)
}

func TestAssertNodeExists_AbsentKey(t *testing.T) {
	result := twoLevelResult(t)

	err := evaluateAssertion(result, Assertion{Type: AssertNodeExists, Key: "TOP/Z"})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Contains(t, ae.Error(), "TOP/Z")
	assert.Contains(t, ae.Error(), "key absent")
}

func TestAssertNodeExists_AttributeMismatch(t *testing.T) {
	result := twoLevelResult(t)

	err := evaluateAssertion(result, Assertion{
		Type:   AssertNodeExists,
		Key:    "TOP/A",
		Expect: map[string]string{"quantity": "99"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `quantity="99"`)
	assert.Contains(t, err.Error(), `quantity="2"`)
}

func TestAssertNodeExists_UnknownField(t *testing.T) {
	result := twoLevelResult(t)

	err := evaluateAssertion(result, Assertion{
		Type:   AssertNodeExists,
		Key:    "TOP/A",
		Expect: map[string]string{"mass": "10g"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "mass"`)
}

func TestAssertNodeCount(t *testing.T) {
	result := twoLevelResult(t)

	assert.NoError(t, evaluateAssertion(result, Assertion{Type: AssertNodeCount, Count: 2}))
	assert.Error(t, evaluateAssertion(result, Assertion{Type: AssertNodeCount, Count: 3}))
}

func TestAssertChangeContains(t *testing.T) {
	result := &Result{
		Changes: &diff.ChangeSet{
			Changes: []diff.ChangeRecord{
				{ID: 1, Kind: diff.Modified, Key: "TOP/A", Field: diff.FieldQuantity},
				{ID: 2, Kind: diff.Removed, Key: "TOP/B"},
			},
		},
	}

	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertChangeContains, Kind: "MODIFIED", Key: "TOP/A", Field: "quantity",
	}))
	// Subset semantics: empty fields match anything.
	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertChangeContains, Key: "TOP/B",
	}))
	assert.Error(t, evaluateAssertion(result, Assertion{
		Type: AssertChangeContains, Kind: "ADDED",
	}))
	assert.Error(t, evaluateAssertion(result, Assertion{
		Type: AssertChangeContains, Kind: "MODIFIED", Key: "TOP/A", Field: "revision",
	}))
}

func TestAssertChangeCount(t *testing.T) {
	result := &Result{
		Changes: &diff.ChangeSet{
			Changes: []diff.ChangeRecord{{ID: 1, Kind: diff.Added, Key: "TOP/E"}},
		},
	}

	assert.NoError(t, evaluateAssertion(result, Assertion{Type: AssertChangeCount, Count: 1}))
	assert.Error(t, evaluateAssertion(result, Assertion{Type: AssertChangeCount, Count: 0}))
}

func TestAssertFindingContains(t *testing.T) {
	result := &Result{
		Findings: []audit.Finding{
			{Check: audit.CheckOrphan, Severity: audit.SeverityError, Key: "TOP/X", PartID: "X"},
			{Check: audit.CheckMissingSourcing, Severity: audit.SeverityWarning, Key: "TOP", PartID: "TOP"},
		},
	}

	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertFindingContains, Check: "A201", Key: "TOP/X", PartID: "X",
	}))
	assert.NoError(t, evaluateAssertion(result, Assertion{
		Type: AssertFindingContains, Check: "A202",
	}))
	assert.Error(t, evaluateAssertion(result, Assertion{
		Type: AssertFindingContains, Check: "A201", PartID: "Y",
	}))
}

func TestAssertFindingCount(t *testing.T) {
	result := &Result{
		Findings: []audit.Finding{
			{Check: audit.CheckOrphan, Key: "TOP/X"},
			{Check: audit.CheckOrphan, Key: "TOP/Y"},
		},
	}

	assert.NoError(t, evaluateAssertion(result, Assertion{Type: AssertFindingCount, Check: "A201", Count: 2}))
	assert.NoError(t, evaluateAssertion(result, Assertion{Type: AssertFindingCount, Check: "A206", Count: 0}))
	assert.Error(t, evaluateAssertion(result, Assertion{Type: AssertFindingCount, Check: "A201", Count: 1}))
}
