package bom

import (
	"fmt"
	"strconv"
	"strings"
)

// LevelNone is the normalized depth of a row that declares no hierarchy
// position (blank depth marker). It is distinct from depth 0: depth 0 is
// the root of the requested scope, LevelNone is "not part of the tree".
const LevelNone = -1

// NormalizeLevel converts a raw depth marker into an integer depth.
//
// Three marker forms are accepted:
//   - a bare integer string ("3") maps directly to that depth
//   - a dotted string ("2.1.1") maps to the number of separators plus one
//   - a blank string maps to LevelNone
//
// Any other form is an error; whether that aborts the build depends on
// where the marker appears (anchor rows are structural, see Build).
func NormalizeLevel(marker string) (int, error) {
	s := strings.TrimSpace(marker)
	if s == "" {
		return LevelNone, nil
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative depth marker %q", marker)
		}
		return n, nil
	}

	if strings.Contains(s, ".") {
		segments := strings.Split(s, ".")
		for _, seg := range segments {
			if _, err := strconv.Atoi(seg); err != nil {
				return 0, fmt.Errorf("unparsable depth marker %q", marker)
			}
		}
		return len(segments), nil
	}

	return 0, fmt.Errorf("unparsable depth marker %q", marker)
}
