package tfc

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ChildID string
type PaymentID string

// =============================================================================
// CHILD - One enrolled child with a reconfirmation anchor
// =============================================================================

// Child is the entity entitlements attach to. ReconfirmationDate anchors
// the quarter layout and may be edited by the user at any time, so it is
// re-read on every computation and never cached alongside derived values.
type Child struct {
	ID                 ChildID
	Name               string
	DateOfBirth        time.Time
	ReconfirmationDate time.Time
	CreatedAt          time.Time
}

// Age returns whole years as of ref. Display-only; the calculation never
// looks at date of birth.
func (c Child) Age(ref time.Time) int {
	if c.DateOfBirth.IsZero() {
		return 0
	}
	years := ref.Year() - c.DateOfBirth.Year()
	anniversary := c.DateOfBirth.AddDate(years, 0, 0)
	if dateOf(ref).Before(dateOf(anniversary)) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// =============================================================================
// PAYMENT - One confirmed childcare payment
// =============================================================================

// Payment is an immutable record of a confirmed payment. Amount is the
// total childcare cost; ParentPaid and GovernmentTopUp are the split as
// computed at confirmation time, already rounded to 2 decimal places.
//
// There is no database-level foreign key discipline here; the consumer
// guarantees ChildID refers to an existing Child.
type Payment struct {
	ID              PaymentID
	ChildID         ChildID
	Amount          Money
	ParentPaid      Money
	GovernmentTopUp Money
	Date            time.Time
	Description     string
	CreatedAt       time.Time
}

// Validate checks the creation-time invariants: non-negative parts and
// Amount == ParentPaid + GovernmentTopUp. Enforced when a payment is
// constructed, not re-validated on read.
func (p Payment) Validate() error {
	if p.ChildID == "" {
		return ErrChildRequired
	}
	if p.Date.IsZero() {
		return ErrInvalidDate
	}
	if p.ParentPaid.IsNegative() || p.GovernmentTopUp.IsNegative() {
		return ErrInvalidAmount
	}
	if !p.Amount.Equal(p.ParentPaid.Add(p.GovernmentTopUp)) {
		return ErrAmountMismatch
	}
	return nil
}

// NewPayment builds a payment record from a computed split. This is the
// only constructor the confirm flow uses, so every persisted GovernmentTopUp
// has been through the same rounding.
func NewPayment(id PaymentID, childID ChildID, proposedCost Money, result Contribution, date time.Time, description string) Payment {
	return Payment{
		ID:              id,
		ChildID:         childID,
		Amount:          result.ParentPayment.Add(result.GovernmentTopUp),
		ParentPaid:      result.ParentPayment,
		GovernmentTopUp: result.GovernmentTopUp,
		Date:            date,
		Description:     description,
		CreatedAt:       time.Now().UTC(),
	}
}
