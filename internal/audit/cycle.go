package audit

import (
	"fmt"
	"strings"

	"github.com/roach88/bomgrid/internal/bom"
)

// checkCircular detects part ids that appear among their own descendants.
//
// The adjacency map is restricted to direct parent/child relationships by
// part id. The search is an iterative depth-first walk with an explicit
// frame stack and a visited memo, so it is O(nodes + edges) and cannot
// blow the call stack on adversarial inputs. Each implicated part is
// flagged exactly once regardless of cycle length.
func checkCircular(ctx *context) []Finding {
	adjacency := make(map[string][]string)
	edges := make(map[string]map[string]bool)
	var partOrder []string
	seenPart := make(map[string]bool)

	for _, key := range ctx.tree.Keys() {
		node, _ := ctx.tree.Get(key)
		if !seenPart[node.PartID] {
			seenPart[node.PartID] = true
			partOrder = append(partOrder, node.PartID)
		}
		if node.ParentKey == bom.RootParent {
			continue
		}
		parent, ok := ctx.tree.Get(node.ParentKey)
		if !ok {
			continue
		}
		if edges[parent.PartID] == nil {
			edges[parent.PartID] = make(map[string]bool)
		}
		if !edges[parent.PartID][node.PartID] {
			edges[parent.PartID][node.PartID] = true
			adjacency[parent.PartID] = append(adjacency[parent.PartID], node.PartID)
		}
	}

	var out []Finding
	visited := make(map[string]bool)
	flagged := make(map[string]bool)

	type frame struct {
		id   string
		next int
	}

	for _, root := range partOrder {
		if visited[root] {
			continue
		}
		stack := []frame{{id: root}}
		onStack := map[string]int{root: 0}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(adjacency[top.id]) {
				child := adjacency[top.id][top.next]
				top.next++

				if pos, on := onStack[child]; on {
					// Every part from the child's stack position up is on
					// the cycle.
					cycle := make([]string, 0, len(stack)-pos+1)
					for _, f := range stack[pos:] {
						cycle = append(cycle, f.id)
					}
					cycle = append(cycle, child)
					path := strings.Join(cycle, " -> ")
					for _, f := range stack[pos:] {
						if flagged[f.id] {
							continue
						}
						flagged[f.id] = true
						out = append(out, Finding{
							Check:    CheckCircular,
							Severity: SeverityError,
							PartID:   f.id,
							Message:  fmt.Sprintf("part %q is part of a circular assembly: %s", f.id, path),
						})
					}
					continue
				}
				if visited[child] {
					continue
				}
				stack = append(stack, frame{id: child})
				onStack[child] = len(stack) - 1
				continue
			}

			visited[top.id] = true
			delete(onStack, top.id)
			stack = stack[:len(stack)-1]
		}
	}
	return out
}
