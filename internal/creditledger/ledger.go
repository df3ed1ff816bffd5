// Package creditledger defines the Credit Ledger interface from §6.
// Credit arithmetic itself is out of scope for the core (§1); this
// package only specifies the boundary Phase B's refund step calls
// through.
package creditledger

import "context"

// SourceKind distinguishes why credits are being added, so a ledger
// implementation can apply its own idempotency rules per entity.
type SourceKind string

const SourcePhaseBRefund SourceKind = "phase_b_partial_refund"

// Ledger adds credits back to a user's balance. AddCredits MUST be
// idempotent per (entityID, sourceKind) pair — calling it twice for the
// same job's refund must not double-credit.
type Ledger interface {
	AddCredits(ctx context.Context, userID string, amount int, sourceKind SourceKind, entityID string, reason string) error
}

// NoopLedger is a Ledger that does nothing, used where credit accounting
// is not wired to a real billing system (e.g. local development).
type NoopLedger struct{}

func (NoopLedger) AddCredits(ctx context.Context, userID string, amount int, sourceKind SourceKind, entityID string, reason string) error {
	return nil
}
