// Package testutil provides deterministic fixtures for BOM tests.
//
// The helpers build row grids in the standard nine-column layout so tests
// across packages share one shape and stay readable.
package testutil

import (
	"time"

	"github.com/roach88/bomgrid/internal/bom"
)

// StdColumns returns the standard test column layout:
// level, part_id, description, revision, quantity, lifecycle, status,
// manufacturer, manufacturer_pn.
func StdColumns() bom.ColumnMap {
	return bom.ColumnMap{
		bom.ColLevel:          0,
		bom.ColPartID:         1,
		bom.ColDescription:    2,
		bom.ColRevision:       3,
		bom.ColQuantity:       4,
		bom.ColLifecycle:      5,
		bom.ColStatus:         6,
		bom.ColManufacturer:   7,
		bom.ColManufacturerPN: 8,
	}
}

// Grid builds a bom.Grid from rows.
func Grid(rows ...bom.Row) bom.Grid {
	return bom.Grid(rows)
}

// PartRow builds a hierarchy row with default attributes. The description
// is derived from the id and the revision defaults to "A".
func PartRow(level, id, qty string) bom.Row {
	return bom.Row{level, id, "part " + id, "A", qty, "", "", "", ""}
}

// FullRow builds a hierarchy row with every attribute explicit.
func FullRow(level, id, desc, rev, qty, lifecycle, status string) bom.Row {
	return bom.Row{level, id, desc, rev, qty, lifecycle, status, "", ""}
}

// SourcedRow builds a hierarchy row that carries a manufacturer entry on
// the node's own row.
func SourcedRow(level, id, qty, mfr, mpn string) bom.Row {
	return bom.Row{level, id, "part " + id, "A", qty, "", "", mfr, mpn}
}

// ContinuationRow builds a blank-identifier sourcing continuation row.
func ContinuationRow(mfr, mpn string) bom.Row {
	return bom.Row{"", "", "", "", "", "", "", mfr, mpn}
}

// InertRow builds a fully blank row that must not affect tree shape.
func InertRow() bom.Row {
	return bom.Row{"", "", "", "", "", "", "", "", ""}
}

// FixedNow returns a frozen clock function for deterministic records.
func FixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
