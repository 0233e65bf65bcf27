package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGovernor() *Governor {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return NewGovernor(
		DefaultPolicy(),
		NewFixedGenerator("rec-1", "rec-2", "rec-3"),
		func() time.Time { return fixed },
	)
}

func TestValidateTransition_Forward(t *testing.T) {
	g := testGovernor()

	res := g.ValidateTransition("DRAFT", "ACTIVE")
	assert.True(t, res.Valid)
	assert.Equal(t, KindForward, res.Kind)
	assert.False(t, res.IsDeviation)
}

func TestValidateTransition_NoOp(t *testing.T) {
	g := testGovernor()

	res := g.ValidateTransition("ACTIVE", "ACTIVE")
	assert.True(t, res.Valid)
	assert.True(t, res.NoOp)
}

func TestValidateTransition_InitialAssignment(t *testing.T) {
	g := testGovernor()

	res := g.ValidateTransition("", "PROTOTYPE")
	assert.True(t, res.Valid)
	assert.Equal(t, KindForward, res.Kind)

	res = g.ValidateTransition("", "BOGUS")
	assert.False(t, res.Valid)
	assert.False(t, res.IsDeviation)
}

func TestValidateTransition_BackwardIsDeviation(t *testing.T) {
	g := testGovernor()

	res := g.ValidateTransition("ACTIVE", "DRAFT")
	assert.False(t, res.Valid)
	assert.True(t, res.IsDeviation)
	assert.NotEmpty(t, res.Message)
}

func TestValidateTransition_UnrecognizedRejectedOutright(t *testing.T) {
	g := testGovernor()

	res := g.ValidateTransition("ACTIVE", "LIMBO")
	assert.False(t, res.Valid)
	assert.False(t, res.IsDeviation, "unrecognized states are not deviations")

	res = g.ValidateTransition("LIMBO", "ACTIVE")
	assert.False(t, res.Valid)
	assert.False(t, res.IsDeviation)
}

func TestValidateTransition_TerminalHasNoOutgoing(t *testing.T) {
	g := testGovernor()

	res := g.ValidateTransition("OBSOLETE", "ACTIVE")
	assert.False(t, res.Valid)
	assert.True(t, res.IsDeviation, "leaving a terminal state needs a deviation")
}

func TestCommit_ForwardProducesRecord(t *testing.T) {
	g := testGovernor()

	rec, res := g.Commit(Transition{
		PartID: "P100",
		From:   "DRAFT",
		To:     "ACTIVE",
		Actor:  "avery",
	})
	require.NotNil(t, rec)
	assert.True(t, res.Valid)
	assert.Equal(t, "rec-1", rec.ID)
	assert.Equal(t, KindForward, rec.Kind)
	assert.Equal(t, "P100", rec.PartID)
	assert.Equal(t, "avery", rec.Actor)
	assert.Empty(t, rec.AuthorizationRef)
	assert.Equal(t, int64(1), rec.Seq)
	assert.Equal(t, 2026, rec.CommittedAt.Year())
}

func TestCommit_DeviationRequiresReference(t *testing.T) {
	g := testGovernor()

	// Without a reference: rejected, no record.
	rec, res := g.Commit(Transition{PartID: "P100", From: "ACTIVE", To: "DRAFT", Actor: "avery"})
	assert.Nil(t, rec)
	assert.False(t, res.Valid)
	assert.True(t, res.IsDeviation)

	// With a reference: committed as DEVIATION, reference attached.
	rec, res = g.Commit(Transition{
		PartID:           "P100",
		From:             "ACTIVE",
		To:               "DRAFT",
		Actor:            "avery",
		AuthorizationRef: "CR-2041",
	})
	require.NotNil(t, rec)
	assert.True(t, res.Valid)
	assert.Equal(t, KindDeviation, rec.Kind)
	assert.Equal(t, "CR-2041", rec.AuthorizationRef)
}

func TestCommit_NoOpProducesNoRecord(t *testing.T) {
	g := testGovernor()

	rec, res := g.Commit(Transition{PartID: "P100", From: "ACTIVE", To: "ACTIVE"})
	assert.Nil(t, rec)
	assert.True(t, res.Valid)
	assert.True(t, res.NoOp)
}

func TestCommit_SeqIsMonotonic(t *testing.T) {
	g := testGovernor()

	r1, _ := g.Commit(Transition{PartID: "P1", From: "DRAFT", To: "ACTIVE"})
	r2, _ := g.Commit(Transition{PartID: "P2", From: "ACTIVE", To: "NRND"})
	require.NotNil(t, r1)
	require.NotNil(t, r2)
	assert.Less(t, r1.Seq, r2.Seq)
}

func TestPolicy_Helpers(t *testing.T) {
	p := DefaultPolicy()

	assert.True(t, p.Recognized("ACTIVE"))
	assert.False(t, p.Recognized("LIMBO"))
	assert.True(t, p.Allows("ACTIVE", "NRND"))
	assert.False(t, p.Allows("NRND", "ACTIVE"))
	assert.True(t, p.IsTerminal("OBSOLETE"))
	assert.False(t, p.IsTerminal("DRAFT"))

	set := p.NonProductionSet()
	assert.True(t, set["EOL"])
	assert.False(t, set["ACTIVE"])
}

func TestClock(t *testing.T) {
	c := NewClockAt(10)
	assert.Equal(t, int64(10), c.Current())
	assert.Equal(t, int64(11), c.Next())
	assert.Equal(t, int64(12), c.Next())
}
