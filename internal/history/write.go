package history

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/bomgrid/internal/diff"
	"github.com/roach88/bomgrid/internal/lifecycle"
)

// WriteTransition inserts a committed lifecycle transition record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - re-committing the same
// record is silently ignored. Other constraint violations (e.g., NOT NULL)
// will still return errors.
func (s *Store) WriteTransition(ctx context.Context, rec *lifecycle.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lifecycle_transitions
		(id, part_id, from_state, to_state, kind, actor, authorization_ref, seq, committed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.PartID,
		rec.From,
		rec.To,
		string(rec.Kind),
		rec.Actor,
		rec.AuthorizationRef,
		rec.Seq,
		rec.CommittedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write transition: %w", err)
	}

	return nil
}

// WriteChangeSet inserts every change record of a diff run under its run
// token, in a single transaction. Uses ON CONFLICT DO NOTHING per record,
// so replaying a run that was already persisted is a no-op.
func (s *Store) WriteChangeSet(ctx context.Context, cs *diff.ChangeSet, recordedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write change set: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stamp := recordedAt.UTC().Format(time.RFC3339Nano)
	for _, rec := range cs.Changes {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO change_log
			(run_token, change_id, kind, location_key, parent_key, field, before_value, after_value, detail, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_token, change_id) DO NOTHING
		`,
			cs.RunToken,
			rec.ID,
			string(rec.Kind),
			rec.Key,
			rec.ParentKey,
			rec.Field,
			rec.Before,
			rec.After,
			rec.Detail,
			stamp,
		)
		if err != nil {
			return fmt.Errorf("write change set: insert change %d: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write change set: commit: %w", err)
	}

	return nil
}
