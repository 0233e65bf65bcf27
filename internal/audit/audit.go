package audit

import (
	"fmt"

	"github.com/roach88/bomgrid/internal/bom"
)

// Options configure one audit invocation.
type Options struct {
	// NonProductionStates lists lifecycle states that make a part a risk
	// when used in a production assembly.
	NonProductionStates map[string]bool

	// PendingStatuses lists status tags marking a row as a new part
	// pending creation; such rows are exempt from the orphan check.
	PendingStatuses map[string]bool
}

// checkFunc is one independent audit check.
type checkFunc func(*context) []Finding

// context is the shared read-only snapshot every check sees.
type context struct {
	tree     *bom.Tree
	parts    bom.PartDictionary
	sourcing bom.SourcingDictionary
	opts     Options

	// childrenByParent groups direct children by parent location key,
	// precomputed once because three checks need it.
	childrenByParent map[string][]*bom.Node
}

// Audit runs every check over the tree and accumulates all findings.
//
// Checks run in a fixed order for deterministic reports, and each runs
// under a recover guard: a panicking check contributes an A299 finding
// instead of aborting its siblings. Nothing here mutates the tree.
func Audit(tree *bom.Tree, parts bom.PartDictionary, sourcing bom.SourcingDictionary, opts Options) []Finding {
	ctx := &context{
		tree:             tree,
		parts:            parts,
		sourcing:         sourcing,
		opts:             opts,
		childrenByParent: groupChildren(tree),
	}

	checks := []struct {
		name string
		fn   checkFunc
	}{
		{"orphan", checkOrphans},
		{"missing-sourcing", checkMissingSourcing},
		{"level-gap", checkLevelGaps},
		{"structural-mismatch", checkStructuralMismatch},
		{"lifecycle-risk", checkLifecycleRisk},
		{"circular", checkCircular},
		{"blank-identifier", checkBlankIdentifiers},
		{"sourcing-count", checkSourcingCounts},
	}

	var findings []Finding
	for _, c := range checks {
		findings = append(findings, runCheck(c.name, c.fn, ctx)...)
	}
	return findings
}

func runCheck(name string, fn checkFunc, ctx *context) (out []Finding) {
	defer func() {
		if r := recover(); r != nil {
			out = append(out, Finding{
				Check:    CheckInternal,
				Severity: SeverityError,
				Message:  fmt.Sprintf("check %s aborted: %v", name, r),
			})
		}
	}()
	return fn(ctx)
}

func groupChildren(tree *bom.Tree) map[string][]*bom.Node {
	out := make(map[string][]*bom.Node)
	for _, key := range tree.Keys() {
		node, _ := tree.Get(key)
		if node.ParentKey == bom.RootParent {
			continue
		}
		out[node.ParentKey] = append(out[node.ParentKey], node)
	}
	return out
}
