/*
contribution.go - The parent/government split calculation

PURPOSE:
  Computes, for one proposed childcare payment, how much the government
  tops up (20%, subject to the remaining quarterly allowance) and how much
  the parent pays. This is the heart of the engine and the only place the
  cap throttling rule lives.

INVARIANTS:
  1. Conservation: GovernmentTopUp + ParentPayment == ProposedCost
     (for any non-negative cost and rate <= 1)
  2. Cap: ConfirmedTopUp + GovernmentTopUp <= QuarterlyCap, always
  3. Monotone: a larger proposed cost never yields a smaller top-up;
     the top-up plateaus once the cap is exhausted

EXAMPLE (the scheme's defaults: 20% rate, GBP 500 cap):
  cost 400, nothing confirmed yet  -> topup 80.00, parent 320.00
  cost 3000, 460 already confirmed -> topup 40.00 (throttled), parent 2960.00
  anything, 500 already confirmed  -> topup 0.00, parent pays it all

SEE ALSO:
  - quarter.go: Determines which payments count as "confirmed this quarter"
  - ledger.go: Recomputes ConfirmedTopUp from the payment history
*/
package tfc

import "github.com/shopspring/decimal"

// Scheme constants. The rate and cap are parameters on the input rather
// than hardcoded in the calculation, but this engine models exactly one
// scheme, so callers use these defaults throughout.
var (
	// DefaultRate is the government contribution: 20p per 80p of parent money.
	DefaultRate = decimal.New(2, -1) // 0.2 exact

	// DefaultQuarterlyCap is the maximum government contribution per child
	// per quarter, in GBP.
	DefaultQuarterlyCap = NewMoneyFromInt(500)
)

// ContributionInput carries everything the split calculation needs.
// ConfirmedTopUp is the sum of GovernmentTopUp across the child's payments
// dated inside the active quarter, excluding the payment being proposed.
type ContributionInput struct {
	ProposedCost   Money
	Rate           decimal.Decimal
	QuarterlyCap   Money
	ConfirmedTopUp Money
}

// Contribution is the computed split. All monetary fields are rounded to
// two decimal places; the booleans let callers surface cap warnings without
// exceptional control flow.
type Contribution struct {
	// PotentialTopUp is what the government would contribute with no cap.
	PotentialTopUp Money

	// RemainingAllowance is the cap headroom before this payment.
	RemainingAllowance Money

	// GovernmentTopUp is the actual contribution: min(potential, remaining).
	GovernmentTopUp Money

	// ParentPayment is the rest of the proposed cost.
	ParentPayment Money

	// RemainingAfterPayment is the headroom left once this payment confirms.
	RemainingAfterPayment Money

	// IsAtLimit is true when the allowance was already exhausted before
	// this payment was considered.
	IsAtLimit bool

	// ExceedsLimit is true when this specific payment is throttled below
	// the full rate.
	ExceedsLimit bool
}

// ComputeContribution is a pure function: no ledger access, no mutation.
// The caller confirms a payment by persisting a Payment built from the
// result; nothing is written here.
//
// A negative proposed cost is a caller validation bug; rather than produce
// negative money it clamps to zero. ConfirmedTopUp below zero is treated
// as zero for the same reason.
func ComputeContribution(in ContributionInput) Contribution {
	cost := in.ProposedCost.Max(Zero())
	confirmed := in.ConfirmedTopUp.Max(Zero())

	potential := cost.Mul(in.Rate).Round2()
	remaining := in.QuarterlyCap.Sub(confirmed).Max(Zero()).Round2()

	topUp := potential.Min(remaining)
	parent := cost.Sub(topUp).Max(Zero()).Round2()

	return Contribution{
		PotentialTopUp:        potential,
		RemainingAllowance:    remaining,
		GovernmentTopUp:       topUp,
		ParentPayment:         parent,
		RemainingAfterPayment: remaining.Sub(topUp).Round2(),
		IsAtLimit:             !remaining.IsPositive(),
		ExceedsLimit:          potential.GreaterThan(remaining),
	}
}
