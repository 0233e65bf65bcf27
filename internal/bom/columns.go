package bom

// Column names a logical grid column. The physical index of each column
// varies between source sheets; a ColumnMap binds names to indices.
type Column string

const (
	ColLevel          Column = "level"
	ColPartID         Column = "part_id"
	ColDescription    Column = "description"
	ColRevision       Column = "revision"
	ColQuantity       Column = "quantity"
	ColLifecycle      Column = "lifecycle"
	ColStatus         Column = "status"
	ColManufacturer   Column = "manufacturer"
	ColManufacturerPN Column = "manufacturer_pn"
)

// ColumnMap binds logical column names to physical cell indices.
type ColumnMap map[Column]int

// requiredColumns are resolved before any row is read. Lifecycle is
// required only when the caller asks for lifecycle capture.
var requiredColumns = []Column{
	ColLevel,
	ColPartID,
	ColDescription,
	ColRevision,
	ColQuantity,
}

// Resolve verifies that every mandatory column is bound to an index.
// It returns a StructuralError listing all missing columns at once, so a
// caller sees the complete problem rather than one column per attempt.
func (m ColumnMap) Resolve(requireLifecycle bool) error {
	required := requiredColumns
	if requireLifecycle {
		required = append(append([]Column{}, requiredColumns...), ColLifecycle)
	}

	var missing []Column
	for _, col := range required {
		if idx, ok := m[col]; !ok || idx < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return newMissingColumns(missing)
	}
	return nil
}

// cell returns the trimmed value of col in row, or "" when the column is
// unbound or the row is too short. Optional columns go through this path;
// required columns have already been resolved.
func (m ColumnMap) cell(row Row, col Column) string {
	idx, ok := m[col]
	if !ok || idx < 0 || idx >= len(row) {
		return ""
	}
	return trimCell(row[idx])
}
