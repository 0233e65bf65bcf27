package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bomgrid/internal/history"
)

const diffOldWorkbook = `columns:
  level: 0
  part_id: 1
  description: 2
  revision: 3
  quantity: 4
rows:
  - ["0", "TOP", "top assembly", "A", "1"]
  - ["1", "A", "bracket", "B", "2"]
  - ["2", "C", "rivet", "A", "8"]
`

const diffNewWorkbook = `columns:
  level: 0
  part_id: 1
  description: 2
  revision: 3
  quantity: 4
rows:
  - ["0", "TOP", "top assembly", "A", "1"]
  - ["1", "A", "bracket", "B", "4"]
`

func TestDiffCommand_Text(t *testing.T) {
	oldPath := writeTempFile(t, "old.yaml", diffOldWorkbook)
	newPath := writeTempFile(t, "new.yaml", diffNewWorkbook)

	out, err := executeCommand(t, "diff", oldPath, newPath)
	require.NoError(t, err)

	assert.Contains(t, out, "MODIFIED")
	assert.Contains(t, out, "REMOVED")
	assert.Contains(t, out, "Impacted assemblies:")
	assert.Contains(t, out, "2 change(s)")
}

func TestDiffCommand_Identical(t *testing.T) {
	oldPath := writeTempFile(t, "old.yaml", diffOldWorkbook)
	newPath := writeTempFile(t, "new.yaml", diffOldWorkbook)

	out, err := executeCommand(t, "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No differences")
}

func TestDiffCommand_ShuffledColumnsInNewRevision(t *testing.T) {
	// Same logical content as diffOldWorkbook with the new revision's
	// columns laid out differently. Each side parses with its own
	// binding, so the diff must come up empty.
	const shuffled = `columns:
  part_id: 0
  level: 1
  quantity: 2
  description: 3
  revision: 4
rows:
  - ["TOP", "0", "1", "top assembly", "A"]
  - ["A", "1", "2", "bracket", "B"]
  - ["C", "2", "8", "rivet", "A"]
`
	oldPath := writeTempFile(t, "old.yaml", diffOldWorkbook)
	newPath := writeTempFile(t, "new.yaml", shuffled)

	out, err := executeCommand(t, "diff", oldPath, newPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No differences")
}

func TestDiffCommand_JSON(t *testing.T) {
	oldPath := writeTempFile(t, "old.yaml", diffOldWorkbook)
	newPath := writeTempFile(t, "new.yaml", diffNewWorkbook)

	out, err := executeCommand(t, "--format", "json", "diff", oldPath, newPath)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   DiffReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data.RunToken)
	assert.Len(t, resp.Data.Changes, 2)
	assert.Contains(t, resp.Data.DirectKeys, "TOP/A")
	assert.Contains(t, resp.Data.ImpactedKeys, "TOP")
}

func TestDiffCommand_Under(t *testing.T) {
	oldPath := writeTempFile(t, "old.yaml", diffOldWorkbook)
	newPath := writeTempFile(t, "new.yaml", diffNewWorkbook)

	out, err := executeCommand(t, "--format", "json", "diff", oldPath, newPath, "--under", "A")
	require.NoError(t, err)

	var resp struct {
		Data DiffReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	// Scoped to A, keys are relative to the scope root.
	for _, rec := range resp.Data.Changes {
		assert.NotContains(t, rec.Key, "TOP")
	}
}

func TestDiffCommand_PersistsToDatabase(t *testing.T) {
	oldPath := writeTempFile(t, "old.yaml", diffOldWorkbook)
	newPath := writeTempFile(t, "new.yaml", diffNewWorkbook)
	dbPath := filepath.Join(t.TempDir(), "history.db")

	out, err := executeCommand(t, "--format", "json", "diff", oldPath, newPath, "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data DiffReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.RunToken)

	store, err := history.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	changes, err := store.ChangesForRun(context.Background(), resp.Data.RunToken)
	require.NoError(t, err)
	assert.Len(t, changes, 2)
}

func TestDiffCommand_MissingInput(t *testing.T) {
	newPath := writeTempFile(t, "new.yaml", diffNewWorkbook)

	_, err := executeCommand(t, "diff", "missing.yaml", newPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
