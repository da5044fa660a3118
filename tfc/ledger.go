/*
ledger.go - Payment history access and derived quarter state

PURPOSE:
  The payment ledger is the source of truth for how much top-up a child
  has already received. The confirmed quarterly total is ALWAYS recomputed
  by folding over the stored payments - there is no separately maintained
  running total that can drift when a payment is added or removed.

WHY RECOMPUTE-ON-READ?
  A cached "top-up received this quarter" field has to be updated after
  every ledger mutation, and forgetting one call site silently corrupts
  the cap. Folding over rounded stored values on every read makes the
  total correct by construction. The payment lists involved are tiny
  (a handful of payments per child per quarter).

SEE ALSO:
  - store/memory.go: In-memory Store for tests
  - ../store/sqlite: SQLite-backed Store
*/
package tfc

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Persistence interface for children and payments
// =============================================================================

// Store handles persistence. Payments are append/remove only: a confirmed
// payment is never edited, only deleted and re-entered.
type Store interface {
	SaveChild(ctx context.Context, c Child) error
	UpdateChild(ctx context.Context, c Child) error
	GetChild(ctx context.Context, id ChildID) (*Child, error)
	ListChildren(ctx context.Context) ([]Child, error)

	// DeleteChild removes the child and all of its payments.
	DeleteChild(ctx context.Context, id ChildID) error

	AppendPayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, childID ChildID, id PaymentID) error

	// ListPayments returns all payments for a child, ordered by date.
	// Callers must not rely on the ordering for correctness: every
	// derived sum filters and folds regardless of order.
	ListPayments(ctx context.Context, childID ChildID) ([]Payment, error)
}

// =============================================================================
// DERIVED SUMS - Folds over the payment history
// =============================================================================

// FilterQuarter returns the payments dated inside the quarter window.
func FilterQuarter(payments []Payment, q Quarter) []Payment {
	var out []Payment
	for _, p := range payments {
		if q.Contains(p.Date) {
			out = append(out, p)
		}
	}
	return out
}

// ConfirmedTopUp folds the government top-up of every payment inside the
// quarter. Stored values are already rounded, so re-adding them cannot
// reintroduce float drift.
func ConfirmedTopUp(payments []Payment, q Quarter) Money {
	total := Zero()
	for _, p := range payments {
		if q.Contains(p.Date) {
			total = total.Add(p.GovernmentTopUp)
		}
	}
	return total
}

// =============================================================================
// LEDGER - Store plus the quarter-aware operations built on it
// =============================================================================

// QuarterStatus is the derived view of a child's active quarter: the
// window, the confirmed total, and the headroom. Never stored.
type QuarterStatus struct {
	Quarter            Quarter
	ConfirmedTopUp     Money
	RemainingAllowance Money
	IsAtLimit          bool
	DaysRemaining      int
}

// Ledger wraps a Store with the scheme's rules: previews, confirmations
// and the recompute-on-read quarter status. It holds no state of its own;
// every call re-reads the child and its payments.
type Ledger struct {
	Store Store
}

// NewLedger creates a ledger over the given store using the scheme defaults.
func NewLedger(store Store) *Ledger {
	return &Ledger{Store: store}
}

// Status computes the active quarter and confirmed totals for a child
// as of ref.
func (l *Ledger) Status(ctx context.Context, childID ChildID, ref time.Time) (*QuarterStatus, error) {
	child, err := l.Store.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	quarter, err := QuarterFor(child.ReconfirmationDate, ref)
	if err != nil {
		return nil, err
	}

	payments, err := l.Store.ListPayments(ctx, childID)
	if err != nil {
		return nil, err
	}

	confirmed := ConfirmedTopUp(payments, quarter)
	remaining := DefaultQuarterlyCap.Sub(confirmed).Max(Zero()).Round2()

	return &QuarterStatus{
		Quarter:            quarter,
		ConfirmedTopUp:     confirmed.Round2(),
		RemainingAllowance: remaining,
		IsAtLimit:          !remaining.IsPositive(),
		DaysRemaining:      quarter.DaysRemaining(ref),
	}, nil
}

// Preview computes the split for a proposed cost without writing anything.
func (l *Ledger) Preview(ctx context.Context, childID ChildID, proposedCost Money, ref time.Time) (*Contribution, *QuarterStatus, error) {
	if proposedCost.IsNegative() {
		return nil, nil, ErrInvalidAmount
	}

	status, err := l.Status(ctx, childID, ref)
	if err != nil {
		return nil, nil, err
	}

	result := ComputeContribution(ContributionInput{
		ProposedCost:   proposedCost,
		Rate:           DefaultRate,
		QuarterlyCap:   DefaultQuarterlyCap,
		ConfirmedTopUp: status.ConfirmedTopUp,
	})
	return &result, status, nil
}

// Confirm recomputes the split from the current ledger snapshot and
// persists the resulting payment. The split is never taken from the
// caller: between preview and confirm another payment may have landed,
// and the cap invariant must hold against the ledger as it is now.
func (l *Ledger) Confirm(ctx context.Context, childID ChildID, proposedCost Money, date time.Time, description string) (*Payment, error) {
	if date.IsZero() {
		return nil, ErrInvalidDate
	}

	result, status, err := l.Preview(ctx, childID, proposedCost, date)
	if err != nil {
		return nil, err
	}

	payment := NewPayment(newPaymentID(date), childID, proposedCost, *result, dateOf(date), description)
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if status.ConfirmedTopUp.Add(payment.GovernmentTopUp).GreaterThan(DefaultQuarterlyCap) {
		// Unreachable via ComputeContribution's throttling; guards
		// against a store returning stale payment lists.
		return nil, &CapExceededError{
			ChildID:   childID,
			Quarter:   status.Quarter,
			Confirmed: status.ConfirmedTopUp,
			Attempted: payment.GovernmentTopUp,
			Cap:       DefaultQuarterlyCap,
		}
	}

	if err := l.Store.AppendPayment(ctx, payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// RemovePayment deletes a payment. No cached totals need fixing up
// afterwards: the next Status call re-folds the remaining payments.
func (l *Ledger) RemovePayment(ctx context.Context, childID ChildID, id PaymentID) error {
	return l.Store.DeletePayment(ctx, childID, id)
}
