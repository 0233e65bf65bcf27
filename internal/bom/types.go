package bom

import "strings"

// Separator joins ancestor part ids into a location key.
const Separator = "/"

// RootParent is the parent key of a depth-0 node.
const RootParent = ""

// Part is one entry of the external part dictionary. The core only reads
// parts; ownership stays with the collaborator that supplied the dictionary.
type Part struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
	Revision    string `json:"revision" yaml:"revision"`
	Lifecycle   string `json:"lifecycle" yaml:"lifecycle"`
}

// PartDictionary maps part id to its dictionary entry.
type PartDictionary map[string]Part

// SourcingEntry is one approved manufacturer for a part.
type SourcingEntry struct {
	Manufacturer   string `json:"manufacturer" yaml:"manufacturer"`
	ManufacturerPN string `json:"manufacturer_pn" yaml:"manufacturer_pn"`
}

// SourcingDictionary maps part id to its ordered approved-manufacturer list.
type SourcingDictionary map[string][]SourcingEntry

// Attributes is the scalar attribute snapshot captured from a node's row.
// Quantity is carried exactly as entered; the core never parses it into a
// number, so "2" and "2.0" are distinct values and floats never reach a
// signature hash.
type Attributes struct {
	Description string `json:"description"`
	Revision    string `json:"revision"`
	Quantity    string `json:"quantity"`
	Lifecycle   string `json:"lifecycle,omitempty"`
}

// Node is one assembly position in a built tree. Nodes are snapshots:
// after Build returns, nothing in this package mutates them.
type Node struct {
	// Depth is the declared depth relative to the build scope. It may
	// exceed the effective key depth when the source grid has a level gap.
	Depth int `json:"depth"`

	// PartID is the part identifier from the row.
	PartID string `json:"part_id"`

	// StatusTag is the row's status marker (e.g. "NEW" for a part pending
	// creation), empty when the status column is unbound.
	StatusTag string `json:"status,omitempty"`

	// Key is the location key: ancestor part ids joined by Separator.
	Key string `json:"key"`

	// ParentKey is the location key of the parent, or RootParent.
	ParentKey string `json:"parent_key"`

	// Row is the grid row index the node was opened from.
	Row int `json:"row"`

	// Attrs is the scalar attribute snapshot.
	Attrs Attributes `json:"attrs"`

	// Sourcing lists the manufacturer entries attached to this node,
	// in row order (the node's own row first, then continuation rows).
	Sourcing []SourcingEntry `json:"sourcing,omitempty"`
}

// BlankRow records a row that declared a hierarchy position but carried no
// part identifier and no sourcing data. The audit layer reports these.
type BlankRow struct {
	Row   int `json:"row"`
	Depth int `json:"depth"`
}

// RowMark records one hierarchy row's declared position, in scan order.
// A re-declared location key keeps only its last node, so row-order
// checks read these marks instead of the surviving nodes.
type RowMark struct {
	Row    int    `json:"row"`
	Depth  int    `json:"depth"`
	Key    string `json:"key"`
	PartID string `json:"part_id"`
}

// Tree is an ordered mapping from location key to assembly node.
// Iteration order is insertion order, which equals source row order; the
// reporting boundary re-sorts when it needs a different presentation.
type Tree struct {
	keys      []string
	nodes     map[string]*Node
	blankRows []BlankRow
	rowMarks  []RowMark
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{nodes: make(map[string]*Node)}
}

func (t *Tree) add(n *Node) {
	if _, exists := t.nodes[n.Key]; !exists {
		t.keys = append(t.keys, n.Key)
	}
	// A repeated key within one scope is a re-declaration of the same
	// position; the later row wins, matching what a reader of the sheet
	// sees last. Every declaration still leaves a row mark.
	t.nodes[n.Key] = n
	t.rowMarks = append(t.rowMarks, RowMark{
		Row:    n.Row,
		Depth:  n.Depth,
		Key:    n.Key,
		PartID: n.PartID,
	})
}

func (t *Tree) addBlankRow(row, depth int) {
	t.blankRows = append(t.blankRows, BlankRow{Row: row, Depth: depth})
}

// Get returns the node at key.
func (t *Tree) Get(key string) (*Node, bool) {
	n, ok := t.nodes[key]
	return n, ok
}

// Keys returns the location keys in insertion (row) order.
// The returned slice is a copy.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.keys)
}

// RowMarks returns the declared row positions in scan (row) order,
// including rows whose location key was later re-declared.
// The returned slice is a copy.
func (t *Tree) RowMarks() []RowMark {
	out := make([]RowMark, len(t.rowMarks))
	copy(out, t.rowMarks)
	return out
}

// BlankRows returns the recorded blank-identifier rows in row order.
func (t *Tree) BlankRows() []BlankRow {
	out := make([]BlankRow, len(t.blankRows))
	copy(out, t.blankRows)
	return out
}

// ParentOf returns the parent location key of key, or RootParent when the
// key has a single segment.
func ParentOf(key string) string {
	idx := strings.LastIndex(key, Separator)
	if idx < 0 {
		return RootParent
	}
	return key[:idx]
}

// Prefixes returns every strict prefix of key, nearest ancestor first.
// For "A/B/C" it returns ["A/B", "A"].
func Prefixes(key string) []string {
	var out []string
	for p := ParentOf(key); p != RootParent; p = ParentOf(p) {
		out = append(out, p)
	}
	return out
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}
