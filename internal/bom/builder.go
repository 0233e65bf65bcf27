package bom

import (
	"fmt"
	"strings"
)

// Row is one raw grid row: an ordered slice of cell values.
type Row []string

// Grid is an ordered row sequence, exactly as exported from the sheet.
type Grid []Row

// BuildOptions control one build scope.
type BuildOptions struct {
	// StartIndex is the first grid row to scan. Zero scans the whole grid;
	// a scoped extraction starts at the chosen parent's own row.
	StartIndex int

	// BaseDepth is subtracted from every normalized depth marker. Zero for
	// whole-sheet builds; the parent's own depth for scoped extraction.
	BaseDepth int

	// RequireLifecycle makes the lifecycle column mandatory, for callers
	// that will run lifecycle-sensitive analysis afterwards.
	RequireLifecycle bool
}

// Build constructs a location-keyed tree from an ordered row grid.
//
// The scan is a single forward pass from StartIndex, maintaining a path
// stack indexed by depth relative to the first processed row. That first
// row anchors the scope, so grids declaring their roots at 0 and at 1
// build identical trees. The scan stops at the first row whose depth falls
// below the scope (an ancestor or higher-scope sibling boundary) or at a
// sibling of the scope root.
//
// Rows with a blank part identifier either extend the open node's sourcing
// list (when they carry manufacturer data) or are inert.
//
// Build fails with a StructuralError before reading any row when a
// required column is unresolvable; a tree is never partially constructed.
func Build(grid Grid, columns ColumnMap, opts BuildOptions) (*Tree, error) {
	if err := columns.Resolve(opts.RequireLifecycle); err != nil {
		return nil, err
	}
	if opts.StartIndex < 0 || opts.StartIndex > len(grid) {
		return nil, &StructuralError{
			Code:    ErrCodeStartOutOfRange,
			Message: fmt.Sprintf("start index %d outside grid of %d rows", opts.StartIndex, len(grid)),
			Row:     opts.StartIndex,
		}
	}

	tree := NewTree()
	stack := make([]string, 0, 8)
	var open *Node
	first := true
	rootDepth := 0

	for i := opts.StartIndex; i < len(grid); i++ {
		row := grid[i]
		pid := columns.cell(row, ColPartID)

		if pid == "" {
			mfr := columns.cell(row, ColManufacturer)
			mpn := columns.cell(row, ColManufacturerPN)
			if open != nil && (mfr != "" || mpn != "") {
				// Sourcing continuation row.
				open.Sourcing = append(open.Sourcing, SourcingEntry{
					Manufacturer:   mfr,
					ManufacturerPN: mpn,
				})
				continue
			}
			if lvl, err := NormalizeLevel(columns.cell(row, ColLevel)); err == nil && lvl != LevelNone {
				if d := lvl - opts.BaseDepth; d > 0 {
					tree.addBlankRow(i, d)
				}
			}
			continue
		}

		lvl, err := NormalizeLevel(columns.cell(row, ColLevel))
		if err != nil {
			if first {
				return nil, &StructuralError{
					Code:    ErrCodeBadAnchorLevel,
					Message: err.Error(),
					Row:     i,
				}
			}
			// A mid-scan row with an unusable marker declares no position.
			continue
		}
		if lvl == LevelNone {
			continue
		}

		depth := lvl - opts.BaseDepth
		if depth < 0 {
			// An ancestor-or-sibling boundary at a higher scope: the
			// requested subtree has ended.
			break
		}
		if first {
			rootDepth = depth
		} else if depth <= rootDepth {
			// A sibling of the scope root, or an ancestor boundary for
			// grids that declare their roots above depth 0.
			break
		}

		// The stack index is the depth relative to the scope root, so a
		// sibling replaces its sibling's slot instead of nesting under it.
		// A jump beyond stack length is a level gap: the declared depth is
		// kept on the node for the audit layer, and the key is formed from
		// the clamped position so prefix closure always holds.
		effective := depth - rootDepth
		if effective > len(stack) {
			effective = len(stack)
		}
		stack = append(stack[:effective], pid)

		key := strings.Join(stack, Separator)
		parent := RootParent
		if len(stack) > 1 {
			parent = strings.Join(stack[:len(stack)-1], Separator)
		}

		node := &Node{
			Depth:     depth,
			PartID:    pid,
			StatusTag: columns.cell(row, ColStatus),
			Key:       key,
			ParentKey: parent,
			Row:       i,
			Attrs: Attributes{
				Description: columns.cell(row, ColDescription),
				Revision:    columns.cell(row, ColRevision),
				Quantity:    columns.cell(row, ColQuantity),
				Lifecycle:   columns.cell(row, ColLifecycle),
			},
		}
		if mfr, mpn := columns.cell(row, ColManufacturer), columns.cell(row, ColManufacturerPN); mfr != "" || mpn != "" {
			node.Sourcing = append(node.Sourcing, SourcingEntry{
				Manufacturer:   mfr,
				ManufacturerPN: mpn,
			})
		}

		tree.add(node)
		open = node
		first = false
	}

	return tree, nil
}

// Subtree extracts the sub-assembly rooted at the first hierarchy row whose
// part identifier equals partID. The anchor row's own depth becomes the
// scope's base depth, so the returned tree is keyed relative to the anchor.
// This is the scoped-extraction mode used for sub-assembly comparisons.
func Subtree(grid Grid, columns ColumnMap, partID string, opts BuildOptions) (*Tree, error) {
	if err := columns.Resolve(opts.RequireLifecycle); err != nil {
		return nil, err
	}
	for i := opts.StartIndex; i < len(grid); i++ {
		if columns.cell(grid[i], ColPartID) != partID {
			continue
		}
		lvl, err := NormalizeLevel(columns.cell(grid[i], ColLevel))
		if err != nil {
			return nil, &StructuralError{
				Code:    ErrCodeBadAnchorLevel,
				Message: err.Error(),
				Row:     i,
			}
		}
		if lvl == LevelNone {
			continue
		}
		scoped := opts
		scoped.StartIndex = i
		scoped.BaseDepth = lvl
		return Build(grid, columns, scoped)
	}
	return nil, &StructuralError{
		Code:    ErrCodePartNotFound,
		Message: fmt.Sprintf("part %q not found in grid", partID),
		Row:     -1,
	}
}
