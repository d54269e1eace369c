// Package core: budget reconciliation for the treasurer ledger.
//
// Every state change on an expense entry (create, edit, archive, restore,
// delete) reduces to one signed adjustment applied to three pools at once:
// the yearly remaining balance, the yearly expense total, and the proposed
// budget of the entry's line item. The functions here compute that adjustment
// from a snapshot of the pools; storage applies it inside a single
// transaction so the pools can never drift apart.
package core

import (
	"errors"
	"fmt"
)

// BudgetSnapshot is the prior pool state, read inside the same transaction
// that will apply the resulting delta.
type BudgetSnapshot struct {
	RemainingBalance Money
	TotalExpense     Money
	ProposedBudget   Money
}

// Delta is a signed adjustment in cents. For any valid delta
// RemainingBalance == -TotalExpense and ProposedBudget == RemainingBalance:
// the line item pool and the yearly balance move in lockstep.
type Delta struct {
	RemainingBalance int64
	TotalExpense     int64
	ProposedBudget   int64
}

// ErrPoolInvariant marks a delta that would break the lockstep invariant.
// Deltas built by this package cannot trip it; callers keep the check as a
// last guard before committing.
var ErrPoolInvariant = errors.New("pool adjustment invariant violated")

func (d Delta) IsZero() bool {
	return d.RemainingBalance == 0 && d.TotalExpense == 0 && d.ProposedBudget == 0
}

func (d Delta) Validate() error {
	if d.RemainingBalance != -d.TotalExpense || d.ProposedBudget != d.RemainingBalance {
		return fmt.Errorf("%w: %+v", ErrPoolInvariant, d)
	}
	return nil
}

// Apply returns the snapshot after the delta.
func (s BudgetSnapshot) Apply(d Delta) BudgetSnapshot {
	return BudgetSnapshot{
		RemainingBalance: Money{Cents: s.RemainingBalance.Cents + d.RemainingBalance},
		TotalExpense:     Money{Cents: s.TotalExpense.Cents + d.TotalExpense},
		ProposedBudget:   Money{Cents: s.ProposedBudget.Cents + d.ProposedBudget},
	}
}

// drawnAmount is the amount an entry currently holds against its pools: the
// actual spend once confirmed, the proposed amount until then.
func drawnAmount(proposed, actual Money) int64 {
	if actual.Cents > 0 {
		return actual.Cents
	}
	return proposed.Cents
}

// drawDown builds the adjustment that draws used cents out of all three
// pools. Negative used returns money instead.
func drawDown(used int64) Delta {
	return Delta{
		RemainingBalance: -used,
		TotalExpense:     used,
		ProposedBudget:   -used,
	}
}

// checkPool rejects a delta that would drive the line item's pool negative.
// The guard is against the selected line item's own pool, not the yearly
// remaining balance.
func checkPool(snap BudgetSnapshot, d Delta) (Delta, error) {
	if snap.ProposedBudget.Cents+d.ProposedBudget < 0 {
		return Delta{}, ErrInsufficientBalance
	}
	return d, nil
}

// ReturnAmount is |proposed - actual| once an actual spend is known, zero
// before that. Recorded on the entry for audit; it never feeds the pool
// deltas.
func ReturnAmount(proposed, actual Money) Money {
	if actual.Cents <= 0 {
		return Money{}
	}
	diff := proposed.Cents - actual.Cents
	if diff < 0 {
		diff = -diff
	}
	return Money{Cents: diff}
}

// ComputeCreateDelta draws a new entry down against the pools.
func ComputeCreateDelta(snap BudgetSnapshot, proposed, actual Money) (Delta, error) {
	if err := proposed.Validate(); err != nil {
		return Delta{}, err
	}
	if actual.Cents < 0 {
		return Delta{}, ErrInvalidAmount
	}
	return checkPool(snap, drawDown(drawnAmount(proposed, actual)))
}

// EditKind classifies an edit by how it moves the entry's drawn amount.
type EditKind int

const (
	// EditUnchanged: the drawn amount did not move. Covers the untouched
	// entry and a proposed-amount change while a confirmed actual is in
	// effect (the actual stays authoritative; only the audit return amount
	// shifts).
	EditUnchanged EditKind = iota
	// EditProposedChanged: no actual in effect, proposed amount moved.
	EditProposedChanged
	// EditActualIntroduced: an actual spend was confirmed for the first time.
	EditActualIntroduced
	// EditActualChanged: a confirmed actual was corrected.
	EditActualChanged
	// EditActualCleared: the confirmed actual was removed again, rebasing the
	// draw back onto the proposed amount.
	EditActualCleared
)

func (k EditKind) String() string {
	switch k {
	case EditUnchanged:
		return "unchanged"
	case EditProposedChanged:
		return "proposed_changed"
	case EditActualIntroduced:
		return "actual_introduced"
	case EditActualChanged:
		return "actual_changed"
	case EditActualCleared:
		return "actual_cleared"
	default:
		return "unknown"
	}
}

// ClassifyEdit maps the before/after amounts of an edit onto an EditKind.
func ClassifyEdit(prevProposed, prevActual, newProposed, newActual Money) EditKind {
	hadActual := prevActual.Cents > 0
	hasActual := newActual.Cents > 0
	switch {
	case !hadActual && hasActual:
		return EditActualIntroduced
	case hadActual && !hasActual:
		return EditActualCleared
	case hadActual && hasActual:
		if newActual.Cents != prevActual.Cents {
			return EditActualChanged
		}
		return EditUnchanged
	default:
		if newProposed.Cents != prevProposed.Cents {
			return EditProposedChanged
		}
		return EditUnchanged
	}
}

// ComputeEditDelta rebases an edited entry's draw from the previously
// persisted amounts onto the new ones. Every variant re-validates the
// line item pool against the recomputed delta.
func ComputeEditDelta(snap BudgetSnapshot, prevProposed, prevActual, newProposed, newActual Money) (Delta, error) {
	if err := newProposed.Validate(); err != nil {
		return Delta{}, err
	}
	if newActual.Cents < 0 {
		return Delta{}, ErrInvalidAmount
	}

	var used int64
	switch ClassifyEdit(prevProposed, prevActual, newProposed, newActual) {
	case EditUnchanged:
		return Delta{}, nil
	case EditProposedChanged:
		used = newProposed.Cents - prevProposed.Cents
	case EditActualIntroduced:
		used = newActual.Cents - drawnAmount(prevProposed, prevActual)
	case EditActualChanged:
		used = newActual.Cents - prevActual.Cents
	case EditActualCleared:
		used = newProposed.Cents - prevActual.Cents
	}
	return checkPool(snap, drawDown(used))
}

// ComputeArchiveDelta returns an archived entry's drawn amount to all three
// pools. Archiving only ever gives money back, so there is no precondition.
func ComputeArchiveDelta(proposed, actual Money) Delta {
	used := drawnAmount(proposed, actual)
	return Delta{
		RemainingBalance: used,
		TotalExpense:     -used,
		ProposedBudget:   used,
	}
}

// ComputeRestoreDelta re-applies the draw-down of a restored entry. Restoring
// an entry whose line item pool has since been exhausted fails instead of
// driving the pool negative.
func ComputeRestoreDelta(snap BudgetSnapshot, proposed, actual Money) (Delta, error) {
	return checkPool(snap, drawDown(drawnAmount(proposed, actual)))
}
