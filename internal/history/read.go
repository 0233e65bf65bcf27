package history

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/bomgrid/internal/diff"
	"github.com/roach88/bomgrid/internal/lifecycle"
)

// TransitionsForPart returns all committed transitions for a part.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no records exist for the part.
func (s *Store) TransitionsForPart(ctx context.Context, partID string) ([]lifecycle.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, part_id, from_state, to_state, kind, actor, authorization_ref, seq, committed_at
		FROM lifecycle_transitions
		WHERE part_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, partID)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	records := []lifecycle.Record{}
	for rows.Next() {
		var rec lifecycle.Record
		var kind, committedAt string
		err := rows.Scan(
			&rec.ID,
			&rec.PartID,
			&rec.From,
			&rec.To,
			&kind,
			&rec.Actor,
			&rec.AuthorizationRef,
			&rec.Seq,
			&committedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		rec.Kind = lifecycle.Kind(kind)
		rec.CommittedAt, err = time.Parse(time.RFC3339Nano, committedAt)
		if err != nil {
			return nil, fmt.Errorf("parse committed_at: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}

	return records, nil
}

// CurrentState returns the to_state of the highest-seq transition for a
// part, or "" if the part has no committed transitions.
func (s *Store) CurrentState(ctx context.Context, partID string) (string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT to_state
		FROM lifecycle_transitions
		WHERE part_id = ?
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`, partID)
	if err != nil {
		return "", fmt.Errorf("query current state: %w", err)
	}
	defer rows.Close()

	var state string
	if rows.Next() {
		if err := rows.Scan(&state); err != nil {
			return "", fmt.Errorf("scan current state: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate current state: %w", err)
	}

	return state, nil
}

// MaxSeq returns the highest sequence number committed for a part, or 0
// if the part has no transitions. Used to resume a governor's clock.
func (s *Store) MaxSeq(ctx context.Context, partID string) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0)
		FROM lifecycle_transitions
		WHERE part_id = ?
	`, partID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq, nil
}

// ChangesForRun returns all change records persisted under a run token.
// Results are ordered by change_id, matching the order the diff engine
// emitted them.
//
// Returns an empty slice (not nil) if the run token is unknown.
func (s *Store) ChangesForRun(ctx context.Context, runToken string) ([]diff.ChangeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT change_id, kind, location_key, parent_key, field, before_value, after_value, detail
		FROM change_log
		WHERE run_token = ?
		ORDER BY change_id ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("query changes: %w", err)
	}
	defer rows.Close()

	changes := []diff.ChangeRecord{}
	for rows.Next() {
		var rec diff.ChangeRecord
		var kind string
		err := rows.Scan(
			&rec.ID,
			&kind,
			&rec.Key,
			&rec.ParentKey,
			&rec.Field,
			&rec.Before,
			&rec.After,
			&rec.Detail,
		)
		if err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		rec.Kind = diff.Kind(kind)
		changes = append(changes, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}

	return changes, nil
}

// RunTokens returns the distinct run tokens present in the change log,
// in lexical order.
func (s *Store) RunTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT run_token
		FROM change_log
		ORDER BY run_token COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query run tokens: %w", err)
	}
	defer rows.Close()

	tokens := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, fmt.Errorf("scan run token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run tokens: %w", err)
	}

	return tokens, nil
}
