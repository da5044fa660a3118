/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY IN AND OUT:
  Monetary request fields are decimal strings ("123.45"), parsed by the
  core's decimal parser so garbage never becomes a float. Monetary
  response fields are float64 purely for display - every value has been
  rounded to 2 decimal places before it gets here.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/brightkite/tfc-engine/tfc"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ChildDTO represents a child in API responses, including the derived
// quarter view (never stored; recomputed per request).
type ChildDTO struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name,omitempty"`
	DateOfBirth        string  `json:"date_of_birth,omitempty"`
	Age                int     `json:"age,omitempty"`
	ReconfirmationDate string  `json:"reconfirmation_date"`
	CreatedAt          string  `json:"created_at,omitempty"`

	QuarterStart       string  `json:"quarter_start"`
	QuarterEnd         string  `json:"quarter_end"`
	DaysRemaining      int     `json:"days_remaining"`
	ConfirmedTopUp     float64 `json:"confirmed_top_up"`
	RemainingAllowance float64 `json:"remaining_allowance"`
	IsAtLimit          bool    `json:"is_at_limit"`
}

// CreateChildRequest is the request to enrol a child.
type CreateChildRequest struct {
	Name               string `json:"name"`
	DateOfBirth        string `json:"date_of_birth,omitempty"`
	ReconfirmationDate string `json:"reconfirmation_date"`
}

// UpdateChildRequest edits display fields and the reconfirmation anchor.
// Moving the anchor reshapes the quarter layout on the next read; nothing
// else has to be recalculated because nothing derived is stored.
type UpdateChildRequest struct {
	Name               *string `json:"name,omitempty"`
	DateOfBirth        *string `json:"date_of_birth,omitempty"`
	ReconfirmationDate *string `json:"reconfirmation_date,omitempty"`
}

// PaymentDTO represents a confirmed payment.
type PaymentDTO struct {
	ID              string  `json:"id"`
	ChildID         string  `json:"child_id"`
	Amount          float64 `json:"amount"`
	ParentPaid      float64 `json:"parent_paid"`
	GovernmentTopUp float64 `json:"government_top_up"`
	Date            string  `json:"date"`
	Description     string  `json:"description,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// CalculateRequest asks for a contribution preview.
type CalculateRequest struct {
	Cost string `json:"cost"` // decimal string, e.g. "400.00"
}

// ConfirmPaymentRequest confirms a payment. The server recomputes the
// split from the ledger at confirmation time; clients cannot supply it.
type ConfirmPaymentRequest struct {
	Cost        string `json:"cost"`
	Date        string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Description string `json:"description,omitempty"`
}

// CalculationDTO is the contribution preview plus the quarter context it
// was computed against.
type CalculationDTO struct {
	PotentialTopUp        float64 `json:"potential_top_up"`
	RemainingAllowance    float64 `json:"remaining_allowance"`
	GovernmentTopUp       float64 `json:"government_top_up"`
	ParentPayment         float64 `json:"parent_payment"`
	RemainingAfterPayment float64 `json:"remaining_after_payment"`
	IsAtLimit             bool    `json:"is_at_limit"`
	ExceedsLimit          bool    `json:"exceeds_limit"`

	QuarterStart  string `json:"quarter_start"`
	QuarterEnd    string `json:"quarter_end"`
	DaysRemaining int    `json:"days_remaining"`
}

// PaymentListDTO wraps a payment history with its totals.
type PaymentListDTO struct {
	Payments []PaymentDTO `json:"payments"`
	Summary  SummaryDTO   `json:"summary"`
}

// SummaryDTO is the aggregation over the returned payments.
type SummaryDTO struct {
	Count           int     `json:"count"`
	Amount          float64 `json:"amount"`
	ParentPaid      float64 `json:"parent_paid"`
	GovernmentTopUp float64 `json:"government_top_up"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toChildDTO(c tfc.Child, status *tfc.QuarterStatus, now time.Time) ChildDTO {
	dto := ChildDTO{
		ID:                 string(c.ID),
		Name:               c.Name,
		ReconfirmationDate: c.ReconfirmationDate.Format("2006-01-02"),
		QuarterStart:       status.Quarter.Start.Format("2006-01-02"),
		QuarterEnd:         status.Quarter.End.Format("2006-01-02"),
		DaysRemaining:      status.DaysRemaining,
		ConfirmedTopUp:     status.ConfirmedTopUp.Float64(),
		RemainingAllowance: status.RemainingAllowance.Float64(),
		IsAtLimit:          status.IsAtLimit,
	}
	if !c.DateOfBirth.IsZero() {
		dto.DateOfBirth = c.DateOfBirth.Format("2006-01-02")
		dto.Age = c.Age(now)
	}
	if !c.CreatedAt.IsZero() {
		dto.CreatedAt = c.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPaymentDTO(p tfc.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:              string(p.ID),
		ChildID:         string(p.ChildID),
		Amount:          p.Amount.Float64(),
		ParentPaid:      p.ParentPaid.Float64(),
		GovernmentTopUp: p.GovernmentTopUp.Float64(),
		Date:            p.Date.Format("2006-01-02"),
		Description:     p.Description,
	}
	if !p.CreatedAt.IsZero() {
		dto.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPaymentDTOs(payments []tfc.Payment) []PaymentDTO {
	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	return dtos
}

func toSummaryDTO(s tfc.Summary) SummaryDTO {
	return SummaryDTO{
		Count:           s.Count,
		Amount:          s.Amount.Round2().Float64(),
		ParentPaid:      s.ParentPaid.Round2().Float64(),
		GovernmentTopUp: s.GovernmentTopUp.Round2().Float64(),
	}
}

func toCalculationDTO(c tfc.Contribution, status *tfc.QuarterStatus) CalculationDTO {
	return CalculationDTO{
		PotentialTopUp:        c.PotentialTopUp.Float64(),
		RemainingAllowance:    c.RemainingAllowance.Float64(),
		GovernmentTopUp:       c.GovernmentTopUp.Float64(),
		ParentPayment:         c.ParentPayment.Float64(),
		RemainingAfterPayment: c.RemainingAfterPayment.Float64(),
		IsAtLimit:             c.IsAtLimit,
		ExceedsLimit:          c.ExceedsLimit,
		QuarterStart:          status.Quarter.Start.Format("2006-01-02"),
		QuarterEnd:            status.Quarter.End.Format("2006-01-02"),
		DaysRemaining:         status.DaysRemaining,
	}
}
