package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind categorizes a committed transition.
type Kind string

const (
	KindForward   Kind = "FORWARD"
	KindDeviation Kind = "DEVIATION"
)

// Result is the outcome of validating a transition. A rejection is a
// result, not an error: the caller reports Message and leaves state
// untouched.
type Result struct {
	// Valid reports whether the transition may proceed as requested.
	Valid bool `json:"valid"`

	// NoOp is set when current and next are equal.
	NoOp bool `json:"no_op,omitempty"`

	// IsDeviation is set when the move is outside the forward table but
	// both states are recognized; it becomes committable once an
	// authorization reference is supplied.
	IsDeviation bool `json:"is_deviation,omitempty"`

	// Kind is FORWARD or DEVIATION for valid transitions.
	Kind Kind `json:"kind,omitempty"`

	// Message is the human-readable reason or confirmation.
	Message string `json:"message"`
}

// Transition is a requested lifecycle edit.
type Transition struct {
	PartID           string `json:"part_id"`
	From             string `json:"from"`
	To               string `json:"to"`
	Actor            string `json:"actor"`
	AuthorizationRef string `json:"authorization_ref,omitempty"`
}

// Record is one committed transition, destined for the external history
// store. Rejected transitions never produce a record.
type Record struct {
	ID               string    `json:"id"`
	PartID           string    `json:"part_id"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	Kind             Kind      `json:"kind"`
	Actor            string    `json:"actor"`
	AuthorizationRef string    `json:"authorization_ref,omitempty"`
	Seq              int64     `json:"seq"`
	CommittedAt      time.Time `json:"committed_at"`
}

// TokenGenerator produces record ids.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable record ids.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 as a hyphenated string.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined ids for deterministic tests.
type FixedGenerator struct {
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order and
// panics when exhausted.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next fixed token.
func (g *FixedGenerator) Generate() string {
	if g.idx >= len(g.tokens) {
		panic("lifecycle: FixedGenerator exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

// Governor validates and commits lifecycle transitions against one
// policy. It holds no per-part state; the caller owns current states.
type Governor struct {
	policy *Policy
	clock  *Clock
	tokens TokenGenerator
	now    func() time.Time
}

// NewGovernor creates a governor with production defaults (UUIDv7 record
// ids, wall-clock timestamps). Pass nil for tokens or now to keep the
// defaults; tests inject fixed values.
func NewGovernor(policy *Policy, tokens TokenGenerator, now func() time.Time) *Governor {
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	if now == nil {
		now = time.Now
	}
	return &Governor{
		policy: policy,
		clock:  NewClock(),
		tokens: tokens,
		now:    now,
	}
}

// Policy returns the governing policy.
func (g *Governor) Policy() *Policy {
	return g.policy
}

// ResumeAt moves the sequence clock forward so committed records continue
// an existing history rather than restarting at 1. Moving backwards is a
// no-op; sequence numbers never repeat.
func (g *Governor) ResumeAt(seq int64) {
	if seq > g.clock.Current() {
		g.clock = NewClockAt(seq)
	}
}

// ValidateTransition checks a move from current to next without
// committing anything.
func (g *Governor) ValidateTransition(current, next string) Result {
	if current == next {
		return Result{Valid: true, NoOp: true, Message: "no change"}
	}

	if current == "" {
		if g.policy.Recognized(next) {
			return Result{
				Valid:   true,
				Kind:    KindForward,
				Message: fmt.Sprintf("initial assignment to %s", next),
			}
		}
		return Result{
			Valid:   false,
			Message: fmt.Sprintf("unrecognized state %q", next),
		}
	}

	if !g.policy.Recognized(current) || !g.policy.Recognized(next) {
		return Result{
			Valid:   false,
			Message: fmt.Sprintf("unrecognized state in transition %q to %q", current, next),
		}
	}

	if g.policy.Allows(current, next) {
		return Result{
			Valid:   true,
			Kind:    KindForward,
			Message: fmt.Sprintf("%s to %s", current, next),
		}
	}

	return Result{
		Valid:       false,
		IsDeviation: true,
		Message: fmt.Sprintf("%s to %s is not a forward transition; an authorization reference is required",
			current, next),
	}
}

// Commit validates the transition and, when acceptable, produces the
// record for the history store.
//
// A deviation commits only when the request carries an authorization
// reference; the reference is attached to the record. No-ops commit
// nothing (valid result, nil record). Rejections return a nil record and
// the validation result unchanged.
func (g *Governor) Commit(in Transition) (*Record, Result) {
	res := g.ValidateTransition(in.From, in.To)

	if res.NoOp {
		return nil, res
	}

	kind := res.Kind
	switch {
	case res.Valid:
		// Forward transition or initial assignment.
	case res.IsDeviation && in.AuthorizationRef != "":
		kind = KindDeviation
		res.Valid = true
		res.Kind = KindDeviation
		res.Message = fmt.Sprintf("%s to %s accepted as deviation under %s", in.From, in.To, in.AuthorizationRef)
	default:
		return nil, res
	}

	rec := &Record{
		ID:          g.tokens.Generate(),
		PartID:      in.PartID,
		From:        in.From,
		To:          in.To,
		Kind:        kind,
		Actor:       in.Actor,
		Seq:         g.clock.Next(),
		CommittedAt: g.now(),
	}
	if kind == KindDeviation {
		rec.AuthorizationRef = in.AuthorizationRef
	}
	return rec, res
}
