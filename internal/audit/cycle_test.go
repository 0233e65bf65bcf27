package audit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgrid/internal/bom"
	"github.com/roach88/bomgrid/internal/testutil"
)

func TestCycle_TwoPartLoop(t *testing.T) {
	// P1 contains P2, and that P2 contains P1 again.
	tree := buildTree(t,
		testutil.PartRow("1", "P1", "1"),
		testutil.PartRow("2", "P2", "1"),
		testutil.PartRow("3", "P1", "1"),
	)

	findings := Audit(tree, nil, nil, Options{})
	cycles := findByCheck(findings, CheckCircular)
	require.Len(t, cycles, 2, "each implicated part flagged exactly once")

	parts := map[string]bool{}
	for _, f := range cycles {
		assert.Equal(t, SeverityError, f.Severity)
		parts[f.PartID] = true
	}
	assert.True(t, parts["P1"])
	assert.True(t, parts["P2"])
}

func TestCycle_LongerLoop(t *testing.T) {
	tree := buildTree(t,
		testutil.PartRow("1", "P1", "1"),
		testutil.PartRow("2", "P2", "1"),
		testutil.PartRow("3", "P3", "1"),
		testutil.PartRow("4", "P4", "1"),
		testutil.PartRow("5", "P1", "1"),
	)

	findings := Audit(tree, nil, nil, Options{})
	cycles := findByCheck(findings, CheckCircular)
	assert.Len(t, cycles, 4)
}

func TestCycle_SelfReference(t *testing.T) {
	tree := buildTree(t,
		testutil.PartRow("1", "P1", "1"),
		testutil.PartRow("2", "P1", "1"),
	)

	findings := Audit(tree, nil, nil, Options{})
	cycles := findByCheck(findings, CheckCircular)
	require.Len(t, cycles, 1)
	assert.Equal(t, "P1", cycles[0].PartID)
}

func TestCycle_AcyclicTreeClean(t *testing.T) {
	tree := buildTree(t,
		testutil.PartRow("1", "A", "1"),
		testutil.PartRow("2", "B", "1"),
		testutil.PartRow("3", "C", "1"),
		testutil.PartRow("2", "D", "1"),
		testutil.PartRow("3", "C", "1"), // reuse without recursion
	)

	findings := Audit(tree, nil, nil, Options{})
	assert.Empty(t, findByCheck(findings, CheckCircular))
}

func TestCycle_TerminatesOnWideTrees(t *testing.T) {
	// A few hundred siblings sharing children's part ids must terminate
	// quickly with the visited memo and flag nothing.
	rows := bom.Grid{testutil.PartRow("1", "ROOT", "1")}
	for i := 0; i < 300; i++ {
		rows = append(rows, testutil.PartRow("2", fmt.Sprintf("S%03d", i), "1"))
		rows = append(rows, testutil.PartRow("3", "SHARED", "1"))
	}
	tree, err := bom.Build(rows, testutil.StdColumns(), bom.BuildOptions{})
	require.NoError(t, err)

	findings := Audit(tree, nil, nil, Options{})
	assert.Empty(t, findByCheck(findings, CheckCircular))
}
