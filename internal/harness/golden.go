package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bomgrid/internal/bom"
)

// Snapshot captures a complete scenario result for golden comparison.
// Serialization goes through canonical JSON, so byte equality against the
// golden file means value equality.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical
// JSON serialization. Only canonical-marshalable types appear: strings,
// ints, slices, and maps.
func (s *Snapshot) toCanonicalMap() map[string]any {
	nodes := make([]any, 0, s.Result.Tree.Len())
	for _, key := range s.Result.Tree.Keys() {
		node, _ := s.Result.Tree.Get(key)
		nodeMap := map[string]any{
			"key":     node.Key,
			"part_id": node.PartID,
			"depth":   node.Depth,
		}
		if node.Attrs.Quantity != "" {
			nodeMap["quantity"] = node.Attrs.Quantity
		}
		if node.Attrs.Revision != "" {
			nodeMap["revision"] = node.Attrs.Revision
		}
		if node.Attrs.Lifecycle != "" {
			nodeMap["lifecycle"] = node.Attrs.Lifecycle
		}
		nodes = append(nodes, nodeMap)
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"nodes":         nodes,
	}

	if s.Result.Changes != nil {
		changes := make([]any, 0, len(s.Result.Changes.Changes))
		for _, rec := range s.Result.Changes.Changes {
			changeMap := map[string]any{
				"id":   rec.ID,
				"kind": string(rec.Kind),
				"key":  rec.Key,
			}
			if rec.Field != "" {
				changeMap["field"] = rec.Field
			}
			if rec.Before != "" {
				changeMap["before"] = rec.Before
			}
			if rec.After != "" {
				changeMap["after"] = rec.After
			}
			changes = append(changes, changeMap)
		}
		result["run_token"] = s.Result.Changes.RunToken
		result["changes"] = changes
		result["impacted"] = s.Result.Changes.SortedImpacted()
	}

	if len(s.Result.Findings) > 0 {
		findings := make([]any, 0, len(s.Result.Findings))
		for _, f := range s.Result.Findings {
			findingMap := map[string]any{
				"check":    f.Check,
				"severity": string(f.Severity),
				"message":  f.Message,
			}
			if f.Key != "" {
				findingMap["key"] = f.Key
			}
			findings = append(findings, findingMap)
		}
		result["findings"] = findings
	}

	return result
}

// RunWithGolden executes a scenario and compares the result against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	snapshot := Snapshot{
		ScenarioName: scenario.Name,
		Result:       result,
	}

	data, err := bom.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
