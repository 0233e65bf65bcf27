package bom

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Domain prefixes for content-addressed signatures.
// Version suffix enables future algorithm migration.
const (
	DomainSignature = "bomgrid/signature/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChildRef is one (child part id, quantity) pair of an assembly occurrence.
type ChildRef struct {
	PartID   string
	Quantity string
}

// StructuralSignature computes a content-addressed signature for a
// parent's direct child set. Children are sorted by (part id, quantity)
// before hashing, so two occurrences of the same assembly whose rows
// merely appear in a different order produce identical signatures.
func StructuralSignature(children []ChildRef) (string, error) {
	sorted := make([]ChildRef, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PartID != sorted[j].PartID {
			return sorted[i].PartID < sorted[j].PartID
		}
		return sorted[i].Quantity < sorted[j].Quantity
	})

	arr := make([]any, len(sorted))
	for i, c := range sorted {
		arr[i] = []any{c.PartID, c.Quantity}
	}
	data, err := MarshalCanonical(arr)
	if err != nil {
		return "", fmt.Errorf("structural signature: %w", err)
	}
	return hashWithDomain(DomainSignature, data), nil
}

// RenderChildSet formats a sorted child set for finding messages,
// e.g. "B:2, C:1".
func RenderChildSet(children []ChildRef) string {
	sorted := make([]ChildRef, len(children))
	copy(sorted, children)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PartID != sorted[j].PartID {
			return sorted[i].PartID < sorted[j].PartID
		}
		return sorted[i].Quantity < sorted[j].Quantity
	})
	out := ""
	for i, c := range sorted {
		if i > 0 {
			out += ", "
		}
		out += c.PartID + ":" + c.Quantity
	}
	return out
}
