package diff

// Kind categorizes a change record.
type Kind string

const (
	Added    Kind = "ADDED"
	Removed  Kind = "REMOVED"
	Modified Kind = "MODIFIED"
)

// Fields a MODIFIED record can refer to.
const (
	FieldDescription = "description"
	FieldRevision    = "revision"
	FieldQuantity    = "quantity"
	FieldLifecycle   = "lifecycle"
	FieldSourcing    = "sourcing"
)

// ChangeRecord is one detected difference. Records are transient: the
// engine produces them, the caller renders or persists them.
type ChangeRecord struct {
	// ID is monotonically increasing within one diff invocation.
	ID int `json:"id"`

	Kind Kind `json:"kind"`

	// Key is the location key the change applies to.
	Key string `json:"key"`

	// ParentKey is the location key of the containing assembly.
	ParentKey string `json:"parent_key"`

	// Field names the changed attribute for MODIFIED records; empty for
	// ADDED and REMOVED.
	Field string `json:"field,omitempty"`

	// Before and After are the attribute values (or a rendered sourcing
	// entry) on each side. Before is empty for ADDED, After for REMOVED.
	Before string `json:"before,omitempty"`
	After  string `json:"after,omitempty"`

	// Detail is a human-readable one-liner for change logs.
	Detail string `json:"detail"`
}

// ChangeSet is the result of one diff invocation.
type ChangeSet struct {
	// RunToken identifies this invocation for external change logs.
	RunToken string `json:"run_token"`

	Changes []ChangeRecord `json:"changes"`

	// DirectKeys marks keys that produced at least one change record.
	DirectKeys map[string]bool `json:"-"`

	// ImpactedKeys marks strict prefixes of direct keys. A key never
	// appears in both sets.
	ImpactedKeys map[string]bool `json:"-"`
}

// Empty reports whether the diff found no differences.
func (cs *ChangeSet) Empty() bool {
	return len(cs.Changes) == 0
}

// SortedDirect returns the direct keys in lexical order, for rendering.
func (cs *ChangeSet) SortedDirect() []string {
	return sortedKeys(cs.DirectKeys)
}

// SortedImpacted returns the impacted keys in lexical order.
func (cs *ChangeSet) SortedImpacted() []string {
	return sortedKeys(cs.ImpactedKeys)
}
