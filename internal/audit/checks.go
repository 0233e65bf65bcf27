package audit

import (
	"fmt"
	"sort"

	"github.com/roach88/bomgrid/internal/bom"
)

// checkOrphans flags nodes whose part id is absent from the part
// dictionary. Rows tagged as new parts pending creation are exempt.
func checkOrphans(ctx *context) []Finding {
	var out []Finding
	for _, key := range ctx.tree.Keys() {
		node, _ := ctx.tree.Get(key)
		if ctx.opts.PendingStatuses[node.StatusTag] {
			continue
		}
		if _, ok := ctx.parts[node.PartID]; ok {
			continue
		}
		out = append(out, Finding{
			Check:    CheckOrphan,
			Severity: SeverityError,
			Key:      key,
			PartID:   node.PartID,
			Message:  fmt.Sprintf("part %q is not in the part dictionary", node.PartID),
		})
	}
	return out
}

// checkMissingSourcing warns once per part that is known to the part
// dictionary but has no approved manufacturer.
func checkMissingSourcing(ctx *context) []Finding {
	var out []Finding
	seen := make(map[string]bool)
	for _, key := range ctx.tree.Keys() {
		node, _ := ctx.tree.Get(key)
		if seen[node.PartID] {
			continue
		}
		seen[node.PartID] = true
		if _, known := ctx.parts[node.PartID]; !known {
			continue
		}
		if len(ctx.sourcing[node.PartID]) > 0 {
			continue
		}
		out = append(out, Finding{
			Check:    CheckMissingSourcing,
			Severity: SeverityWarning,
			Key:      key,
			PartID:   node.PartID,
			Message:  fmt.Sprintf("part %q has no approved sourcing", node.PartID),
		})
	}
	return out
}

// checkLevelGaps flags consecutive hierarchy rows whose declared depth
// increases by more than one. Declared depths come straight from the
// source markers; the builder clamps keys but never corrects the depth.
// Pairs come from the tree's row marks, which keep original row order
// even when a re-declared location key has dropped its earlier node.
func checkLevelGaps(ctx *context) []Finding {
	var out []Finding
	prev := -1
	prevRow := -1
	for _, mark := range ctx.tree.RowMarks() {
		if prev >= 0 && mark.Depth > prev+1 {
			out = append(out, Finding{
				Check:    CheckLevelGap,
				Severity: SeverityError,
				Key:      mark.Key,
				PartID:   mark.PartID,
				Message:  fmt.Sprintf("depth jumps from %d (row %d) to %d (row %d)", prev, prevRow, mark.Depth, mark.Row),
			})
		}
		prev = mark.Depth
		prevRow = mark.Row
	}
	return out
}

// checkStructuralMismatch verifies that a part reused as a parent carries
// the same (child id, quantity) multiset at every occurrence. One finding
// is emitted per distinct signature of a divergent part, referencing all
// of that signature's occurrence locations.
func checkStructuralMismatch(ctx *context) []Finding {
	type occurrence struct {
		key      string
		children []bom.ChildRef
		sig      string
	}
	occurrencesByPart := make(map[string][]occurrence)
	var partOrder []string

	for _, key := range ctx.tree.Keys() {
		children := ctx.childrenByParent[key]
		if len(children) == 0 {
			continue
		}
		parent, ok := ctx.tree.Get(key)
		if !ok {
			continue
		}
		refs := make([]bom.ChildRef, len(children))
		for i, c := range children {
			refs[i] = bom.ChildRef{PartID: c.PartID, Quantity: c.Attrs.Quantity}
		}
		sig, err := bom.StructuralSignature(refs)
		if err != nil {
			// Strings cannot fail canonical marshaling; anything else is a
			// bug the recover guard should surface.
			panic(err)
		}
		if _, seen := occurrencesByPart[parent.PartID]; !seen {
			partOrder = append(partOrder, parent.PartID)
		}
		occurrencesByPart[parent.PartID] = append(occurrencesByPart[parent.PartID], occurrence{
			key:      key,
			children: refs,
			sig:      sig,
		})
	}

	var out []Finding
	for _, partID := range partOrder {
		occs := occurrencesByPart[partID]
		bySig := make(map[string][]occurrence)
		var sigOrder []string
		for _, o := range occs {
			if _, seen := bySig[o.sig]; !seen {
				sigOrder = append(sigOrder, o.sig)
			}
			bySig[o.sig] = append(bySig[o.sig], o)
		}
		if len(bySig) < 2 {
			continue
		}
		for _, sig := range sigOrder {
			group := bySig[sig]
			locations := make([]string, len(group))
			for i, o := range group {
				locations[i] = o.key
			}
			sort.Strings(locations)
			out = append(out, Finding{
				Check:     CheckStructuralMismatch,
				Severity:  SeverityError,
				Key:       locations[0],
				PartID:    partID,
				Locations: locations,
				Message: fmt.Sprintf("assembly %q built as {%s} here, differently elsewhere",
					partID, bom.RenderChildSet(group[0].children)),
			})
		}
	}
	return out
}

// checkLifecycleRisk warns about nodes whose lifecycle state is in the
// non-production set.
func checkLifecycleRisk(ctx *context) []Finding {
	var out []Finding
	for _, key := range ctx.tree.Keys() {
		node, _ := ctx.tree.Get(key)
		state := node.Attrs.Lifecycle
		if state == "" || !ctx.opts.NonProductionStates[state] {
			continue
		}
		out = append(out, Finding{
			Check:    CheckLifecycleRisk,
			Severity: SeverityWarning,
			Key:      key,
			PartID:   node.PartID,
			Message:  fmt.Sprintf("part %q is in non-production state %q", node.PartID, state),
		})
	}
	return out
}

// checkBlankIdentifiers warns about rows that declared a hierarchy
// position without a part identifier (and without sourcing data, which
// would have made them continuation rows).
func checkBlankIdentifiers(ctx *context) []Finding {
	var out []Finding
	for _, blank := range ctx.tree.BlankRows() {
		out = append(out, Finding{
			Check:    CheckBlankIdentifier,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("row %d declares depth %d with no part identifier", blank.Row, blank.Depth),
		})
	}
	return out
}

// checkSourcingCounts flags nodes that carry fewer sourcing rows than the
// sourcing dictionary expects. A shortfall signals an accidentally
// deleted continuation row. Only parts with more than one expected entry
// are checked; single-entry parts are covered by checkMissingSourcing.
func checkSourcingCounts(ctx *context) []Finding {
	var out []Finding
	for _, key := range ctx.tree.Keys() {
		node, _ := ctx.tree.Get(key)
		expected := len(ctx.sourcing[node.PartID])
		if expected <= 1 {
			continue
		}
		actual := len(node.Sourcing)
		if actual >= expected {
			continue
		}
		out = append(out, Finding{
			Check:    CheckSourcingCount,
			Severity: SeverityError,
			Key:      key,
			PartID:   node.PartID,
			Message:  fmt.Sprintf("part %q carries %d of %d expected sourcing rows", node.PartID, actual, expected),
		})
	}
	return out
}
