package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/bomgrid/internal/bom"
)

// Engine diffs BOM trees. One Engine may serve many invocations; each
// invocation gets its own run token and id sequence.
type Engine struct {
	tokens TokenGenerator
}

// New creates a diff engine. A nil generator gets UUIDv7 run tokens.
func New(tokens TokenGenerator) *Engine {
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	return &Engine{tokens: tokens}
}

// Diff compares two built trees with a default engine.
func Diff(oldTree, newTree *bom.Tree) *ChangeSet {
	return New(nil).Diff(oldTree, newTree)
}

// Diff compares oldTree and newTree and returns the change set with
// direct and impacted key marking. Neither tree is mutated.
func (e *Engine) Diff(oldTree, newTree *bom.Tree) *ChangeSet {
	cs := &ChangeSet{
		RunToken:     e.tokens.Generate(),
		DirectKeys:   make(map[string]bool),
		ImpactedKeys: make(map[string]bool),
	}

	nextID := 0
	emit := func(rec ChangeRecord) {
		nextID++
		rec.ID = nextID
		cs.Changes = append(cs.Changes, rec)
		cs.DirectKeys[rec.Key] = true
	}

	// Working copy of the old tree's key set; matched keys are removed,
	// leftovers become REMOVED records.
	remaining := make(map[string]bool, oldTree.Len())
	for _, key := range oldTree.Keys() {
		remaining[key] = true
	}

	for _, key := range newTree.Keys() {
		newNode, _ := newTree.Get(key)
		oldNode, ok := oldTree.Get(key)
		if !ok {
			emit(ChangeRecord{
				Kind:      Added,
				Key:       key,
				ParentKey: newNode.ParentKey,
				Detail:    fmt.Sprintf("added %s (qty %s)", newNode.PartID, newNode.Attrs.Quantity),
			})
			continue
		}
		delete(remaining, key)
		e.compareNodes(oldNode, newNode, emit)
	}

	for _, key := range oldTree.Keys() {
		if !remaining[key] {
			continue
		}
		oldNode, _ := oldTree.Get(key)
		emit(ChangeRecord{
			Kind:      Removed,
			Key:       key,
			ParentKey: oldNode.ParentKey,
			Detail:    fmt.Sprintf("removed %s (qty %s)", oldNode.PartID, oldNode.Attrs.Quantity),
		})
	}

	// Ancestor impact propagation. Direct wins over impacted at the same
	// key, so prefixes that are themselves direct are skipped.
	for _, rec := range cs.Changes {
		for _, prefix := range bom.Prefixes(rec.Key) {
			if !cs.DirectKeys[prefix] {
				cs.ImpactedKeys[prefix] = true
			}
		}
	}
	return cs
}

func (e *Engine) compareNodes(oldNode, newNode *bom.Node, emit func(ChangeRecord)) {
	fields := []struct {
		name          string
		before, after string
	}{
		{FieldDescription, oldNode.Attrs.Description, newNode.Attrs.Description},
		{FieldRevision, oldNode.Attrs.Revision, newNode.Attrs.Revision},
		{FieldQuantity, oldNode.Attrs.Quantity, newNode.Attrs.Quantity},
		{FieldLifecycle, oldNode.Attrs.Lifecycle, newNode.Attrs.Lifecycle},
	}
	for _, f := range fields {
		if f.before == f.after {
			continue
		}
		emit(ChangeRecord{
			Kind:      Modified,
			Key:       newNode.Key,
			ParentKey: newNode.ParentKey,
			Field:     f.name,
			Before:    f.before,
			After:     f.after,
			Detail:    fmt.Sprintf("%s: %q changed to %q", f.name, f.before, f.after),
		})
	}

	// Sourcing lists compare as sets of (manufacturer, part number) pairs.
	oldSet := make(map[bom.SourcingEntry]bool, len(oldNode.Sourcing))
	for _, s := range oldNode.Sourcing {
		oldSet[s] = true
	}
	seen := make(map[bom.SourcingEntry]bool, len(newNode.Sourcing))
	for _, s := range newNode.Sourcing {
		if seen[s] {
			continue
		}
		seen[s] = true
		if oldSet[s] {
			delete(oldSet, s)
			continue
		}
		emit(ChangeRecord{
			Kind:      Modified,
			Key:       newNode.Key,
			ParentKey: newNode.ParentKey,
			Field:     FieldSourcing,
			After:     renderSourcing(s),
			Detail:    fmt.Sprintf("sourcing added: %s", renderSourcing(s)),
		})
	}
	for _, s := range oldNode.Sourcing {
		if !oldSet[s] {
			continue
		}
		delete(oldSet, s)
		emit(ChangeRecord{
			Kind:      Modified,
			Key:       newNode.Key,
			ParentKey: newNode.ParentKey,
			Field:     FieldSourcing,
			Before:    renderSourcing(s),
			Detail:    fmt.Sprintf("sourcing removed: %s", renderSourcing(s)),
		})
	}
}

// Compare builds both grids with the same column map and options, then
// diffs the trees. A build failure on either side becomes a DiffError.
func (e *Engine) Compare(oldGrid, newGrid bom.Grid, columns bom.ColumnMap, opts bom.BuildOptions) (*ChangeSet, error) {
	oldTree, err := bom.Build(oldGrid, columns, opts)
	if err != nil {
		return nil, &DiffError{Side: "old", Err: err}
	}
	newTree, err := bom.Build(newGrid, columns, opts)
	if err != nil {
		return nil, &DiffError{Side: "new", Err: err}
	}
	return e.Diff(oldTree, newTree), nil
}

// CompareSubtree diffs only the sub-assembly rooted at partID on both
// sides, using the builder's scoped-extraction mode.
func (e *Engine) CompareSubtree(oldGrid, newGrid bom.Grid, columns bom.ColumnMap, partID string, opts bom.BuildOptions) (*ChangeSet, error) {
	oldTree, err := bom.Subtree(oldGrid, columns, partID, opts)
	if err != nil {
		return nil, &DiffError{Side: "old", Err: err}
	}
	newTree, err := bom.Subtree(newGrid, columns, partID, opts)
	if err != nil {
		return nil, &DiffError{Side: "new", Err: err}
	}
	return e.Diff(oldTree, newTree), nil
}

func renderSourcing(s bom.SourcingEntry) string {
	return strings.TrimSpace(s.Manufacturer + " " + s.ManufacturerPN)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
