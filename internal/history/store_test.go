package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/bomgrid/internal/diff"
	"github.com/roach88/bomgrid/internal/lifecycle"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testTransition(id, partID string, seq int64) *lifecycle.Record {
	return &lifecycle.Record{
		ID:          id,
		PartID:      partID,
		From:        "DRAFT",
		To:          "ACTIVE",
		Kind:        lifecycle.KindForward,
		Actor:       "jdoe",
		Seq:         seq,
		CommittedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	tables := []string{"lifecycle_transitions", "change_log"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := testStore(t)

	checks := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"foreign_keys": "1",
	}
	for name, expected := range checks {
		if err := s.verifyPragma(name, expected); err != nil {
			t.Errorf("pragma check failed: %v", err)
		}
	}
}

func TestWriteTransition_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := testTransition("rec-1", "P-100", 1)
	rec.AuthorizationRef = "CR-2041"
	rec.Kind = lifecycle.KindDeviation
	rec.From = "ACTIVE"
	rec.To = "DRAFT"

	if err := s.WriteTransition(ctx, rec); err != nil {
		t.Fatalf("WriteTransition() failed: %v", err)
	}

	got, err := s.TransitionsForPart(ctx, "P-100")
	if err != nil {
		t.Fatalf("TransitionsForPart() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0] != *rec {
		t.Errorf("record mismatch:\n  got:  %+v\n  want: %+v", got[0], *rec)
	}
}

func TestWriteTransition_Idempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := testTransition("rec-1", "P-100", 1)
	for i := 0; i < 3; i++ {
		if err := s.WriteTransition(ctx, rec); err != nil {
			t.Fatalf("WriteTransition() iteration %d failed: %v", i, err)
		}
	}

	got, err := s.TransitionsForPart(ctx, "P-100")
	if err != nil {
		t.Fatalf("TransitionsForPart() failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record after duplicate writes, got %d", len(got))
	}
}

func TestWriteTransition_RejectsUnknownKind(t *testing.T) {
	s := testStore(t)

	rec := testTransition("rec-1", "P-100", 1)
	rec.Kind = "SIDEWAYS"

	if err := s.WriteTransition(context.Background(), rec); err == nil {
		t.Error("expected CHECK constraint error for unknown kind")
	}
}

func TestTransitionsForPart_OrderedBySeq(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	// Write out of order; reads must come back seq-ordered.
	for _, seq := range []int64{3, 1, 2} {
		rec := testTransition("rec-"+string(rune('0'+seq)), "P-100", seq)
		if err := s.WriteTransition(ctx, rec); err != nil {
			t.Fatalf("WriteTransition(seq=%d) failed: %v", seq, err)
		}
	}

	got, err := s.TransitionsForPart(ctx, "P-100")
	if err != nil {
		t.Fatalf("TransitionsForPart() failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, rec := range got {
		if rec.Seq != int64(i+1) {
			t.Errorf("record %d has seq %d, want %d", i, rec.Seq, i+1)
		}
	}
}

func TestTransitionsForPart_EmptyNotNil(t *testing.T) {
	s := testStore(t)

	got, err := s.TransitionsForPart(context.Background(), "P-MISSING")
	if err != nil {
		t.Fatalf("TransitionsForPart() failed: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestCurrentState(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	state, err := s.CurrentState(ctx, "P-100")
	if err != nil {
		t.Fatalf("CurrentState() failed: %v", err)
	}
	if state != "" {
		t.Errorf("expected empty state for unknown part, got %q", state)
	}

	first := testTransition("rec-1", "P-100", 1)
	second := testTransition("rec-2", "P-100", 2)
	second.From = "ACTIVE"
	second.To = "NRND"
	if err := s.WriteTransition(ctx, first); err != nil {
		t.Fatalf("WriteTransition() failed: %v", err)
	}
	if err := s.WriteTransition(ctx, second); err != nil {
		t.Fatalf("WriteTransition() failed: %v", err)
	}

	state, err = s.CurrentState(ctx, "P-100")
	if err != nil {
		t.Fatalf("CurrentState() failed: %v", err)
	}
	if state != "NRND" {
		t.Errorf("CurrentState() = %q, want %q", state, "NRND")
	}
}

func TestWriteChangeSet_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cs := &diff.ChangeSet{
		RunToken: "run-a",
		Changes: []diff.ChangeRecord{
			{
				ID:        1,
				Kind:      diff.Removed,
				Key:       "TOP/A/C",
				ParentKey: "TOP/A",
				Detail:    `removed "C" from "TOP/A"`,
			},
			{
				ID:        2,
				Kind:      diff.Modified,
				Key:       "TOP/A",
				ParentKey: "TOP",
				Field:     diff.FieldQuantity,
				Before:    "2",
				After:     "4",
				Detail:    `quantity of "TOP/A" changed from "2" to "4"`,
			},
		},
	}

	recordedAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	if err := s.WriteChangeSet(ctx, cs, recordedAt); err != nil {
		t.Fatalf("WriteChangeSet() failed: %v", err)
	}

	got, err := s.ChangesForRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("ChangesForRun() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for i, rec := range got {
		if rec != cs.Changes[i] {
			t.Errorf("record %d mismatch:\n  got:  %+v\n  want: %+v", i, rec, cs.Changes[i])
		}
	}
}

func TestWriteChangeSet_ReplayIsNoOp(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cs := &diff.ChangeSet{
		RunToken: "run-a",
		Changes: []diff.ChangeRecord{
			{ID: 1, Kind: diff.Added, Key: "TOP/E", ParentKey: "TOP", Detail: `added "E" under "TOP"`},
		},
	}

	now := time.Now()
	if err := s.WriteChangeSet(ctx, cs, now); err != nil {
		t.Fatalf("first WriteChangeSet() failed: %v", err)
	}
	if err := s.WriteChangeSet(ctx, cs, now.Add(time.Hour)); err != nil {
		t.Fatalf("replayed WriteChangeSet() failed: %v", err)
	}

	got, err := s.ChangesForRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("ChangesForRun() failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 record after replay, got %d", len(got))
	}
}

func TestChangesForRun_UnknownToken(t *testing.T) {
	s := testStore(t)

	got, err := s.ChangesForRun(context.Background(), "run-missing")
	if err != nil {
		t.Fatalf("ChangesForRun() failed: %v", err)
	}
	if got == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestRunTokens(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, token := range []string{"run-b", "run-a"} {
		cs := &diff.ChangeSet{
			RunToken: token,
			Changes: []diff.ChangeRecord{
				{ID: 1, Kind: diff.Added, Key: "TOP/E", ParentKey: "TOP", Detail: "added"},
			},
		}
		if err := s.WriteChangeSet(ctx, cs, time.Now()); err != nil {
			t.Fatalf("WriteChangeSet(%q) failed: %v", token, err)
		}
	}

	tokens, err := s.RunTokens(ctx)
	if err != nil {
		t.Fatalf("RunTokens() failed: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "run-a" || tokens[1] != "run-b" {
		t.Errorf("RunTokens() = %v, want [run-a run-b]", tokens)
	}
}
