/*
handlers.go - HTTP API handlers for the childcare top-up engine

PURPOSE:
  Exposes the top-up engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Children:
    GET    /api/children                     List children with quarter state
    POST   /api/children                     Enrol a child
    GET    /api/children/{id}                Child detail + quarter state
    PUT    /api/children/{id}                Edit name / dates
    DELETE /api/children/{id}                Remove child (cascades payments)

  Payments:
    GET    /api/children/{id}/payments       Payment history (+?quarter=current)
    POST   /api/children/{id}/payments       Confirm a payment
    DELETE /api/children/{id}/payments/{pid} Remove a payment

  Calculation:
    POST   /api/children/{id}/calculate      Preview the split, no writes
    GET    /api/children/{id}/export         CSV export (export.go)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (dates, decimal amounts)
  3. Call domain logic (ledger, calculator)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate id, cap violation)
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/go-chi/chi/v5"

	"github.com/brightkite/tfc-engine/tfc"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger *tfc.Ledger

	// Now is injectable so tests can pin "today". Defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler over the given store.
func NewHandler(store tfc.Store) *Handler {
	return &Handler{
		Ledger: tfc.NewLedger(store),
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// =============================================================================
// CHILD HANDLERS
// =============================================================================

// ListChildren returns all children with their derived quarter state.
func (h *Handler) ListChildren(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	children, err := h.Ledger.Store.ListChildren(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list children", err)
		return
	}

	now := h.Now()
	dtos := make([]ChildDTO, 0, len(children))
	for _, c := range children {
		status, err := h.Ledger.Status(ctx, c.ID, now)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to compute quarter state", err)
			return
		}
		dtos = append(dtos, toChildDTO(c, status, now))
	}

	writeJSON(w, http.StatusOK, dtos)
}

// GetChild returns a single child with derived quarter state.
func (h *Handler) GetChild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tfc.ChildID(chi.URLParam(r, "id"))

	child, err := h.Ledger.Store.GetChild(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get child", err)
		return
	}

	status, err := h.Ledger.Status(ctx, id, h.Now())
	if err != nil {
		writeDomainError(w, "Failed to compute quarter state", err)
		return
	}

	writeJSON(w, http.StatusOK, toChildDTO(*child, status, h.Now()))
}

// CreateChild enrols a new child.
func (h *Handler) CreateChild(w http.ResponseWriter, r *http.Request) {
	var req CreateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reconf, err := parseDateField(req.ReconfirmationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reconfirmation_date (use YYYY-MM-DD)", err)
		return
	}

	child := tfc.Child{
		ID:                 tfc.NewChildID(),
		Name:               req.Name,
		ReconfirmationDate: reconf,
		CreatedAt:          h.Now(),
	}
	if req.DateOfBirth != "" {
		dob, err := parseDateField(req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date_of_birth (use YYYY-MM-DD)", err)
			return
		}
		child.DateOfBirth = dob
	}

	if err := h.Ledger.Store.SaveChild(r.Context(), child); err != nil {
		writeDomainError(w, "Failed to create child", err)
		return
	}

	status, err := h.Ledger.Status(r.Context(), child.ID, h.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute quarter state", err)
		return
	}

	writeJSON(w, http.StatusCreated, toChildDTO(child, status, h.Now()))
}

// UpdateChild edits a child. A changed reconfirmation date takes effect on
// the next read; no stored state needs migrating.
func (h *Handler) UpdateChild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tfc.ChildID(chi.URLParam(r, "id"))

	var req UpdateChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	child, err := h.Ledger.Store.GetChild(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get child", err)
		return
	}

	if req.Name != nil {
		child.Name = *req.Name
	}
	if req.DateOfBirth != nil {
		dob, err := parseDateField(*req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date_of_birth (use YYYY-MM-DD)", err)
			return
		}
		child.DateOfBirth = dob
	}
	if req.ReconfirmationDate != nil {
		reconf, err := parseDateField(*req.ReconfirmationDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reconfirmation_date (use YYYY-MM-DD)", err)
			return
		}
		child.ReconfirmationDate = reconf
	}

	if err := h.Ledger.Store.UpdateChild(ctx, *child); err != nil {
		writeDomainError(w, "Failed to update child", err)
		return
	}

	status, err := h.Ledger.Status(ctx, id, h.Now())
	if err != nil {
		writeDomainError(w, "Failed to compute quarter state", err)
		return
	}
	writeJSON(w, http.StatusOK, toChildDTO(*child, status, h.Now()))
}

// DeleteChild removes a child and, through the store, all of its payments.
func (h *Handler) DeleteChild(w http.ResponseWriter, r *http.Request) {
	id := tfc.ChildID(chi.URLParam(r, "id"))

	if err := h.Ledger.Store.DeleteChild(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete child", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns a child's payment history with totals.
// ?quarter=current restricts to the active quarter window.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tfc.ChildID(chi.URLParam(r, "id"))

	child, err := h.Ledger.Store.GetChild(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get child", err)
		return
	}

	payments, err := h.Ledger.Store.ListPayments(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to list payments", err)
		return
	}

	if r.URL.Query().Get("quarter") == "current" {
		quarter, err := tfc.QuarterFor(child.ReconfirmationDate, h.Now())
		if err != nil {
			writeDomainError(w, "Failed to compute quarter", err)
			return
		}
		payments = tfc.FilterQuarter(payments, quarter)
	}

	writeJSON(w, http.StatusOK, PaymentListDTO{
		Payments: toPaymentDTOs(payments),
		Summary:  toSummaryDTO(tfc.Summarize(payments)),
	})
}

// ConfirmPayment confirms a proposed payment. The split is recomputed
// server-side against the ledger as it is now.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tfc.ChildID(chi.URLParam(r, "id"))

	var req ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cost, err := parseCost(req.Cost)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cost (use a non-negative decimal string)", err)
		return
	}

	date := h.Now()
	if req.Date != "" {
		if date, err = parseDateField(req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
	}

	payment, err := h.Ledger.Confirm(ctx, id, cost, date, req.Description)
	if err != nil {
		writeDomainError(w, "Failed to confirm payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(*payment))
}

// DeletePayment removes a payment. Quarterly totals self-correct on the
// next read because they are folds over what remains.
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := tfc.ChildID(chi.URLParam(r, "id"))
	pid := tfc.PaymentID(chi.URLParam(r, "pid"))

	if err := h.Ledger.RemovePayment(r.Context(), id, pid); err != nil {
		writeDomainError(w, "Failed to delete payment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// CALCULATION HANDLERS
// =============================================================================

// Calculate previews the parent/government split for a proposed cost.
// Pure read: nothing is persisted.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := tfc.ChildID(chi.URLParam(r, "id"))

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cost, err := parseCost(req.Cost)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cost (use a non-negative decimal string)", err)
		return
	}

	result, status, err := h.Ledger.Preview(ctx, id, cost, h.Now())
	if err != nil {
		writeDomainError(w, "Failed to calculate contribution", err)
		return
	}

	writeJSON(w, http.StatusOK, toCalculationDTO(*result, status))
}

// Healthz is the liveness endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDateField(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, tfc.ErrInvalidDate
	}
	return t, nil
}

// parseCost parses a decimal cost string and rejects negatives here, at
// the boundary, rather than relying on the calculator's defensive clamp.
func parseCost(s string) (tfc.Money, error) {
	cost, err := tfc.ParseMoney(s)
	if err != nil {
		return tfc.Money{}, err
	}
	if cost.IsNegative() {
		return tfc.Money{}, tfc.ErrInvalidAmount
	}
	return cost, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps core errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, msg string, err error) {
	var capErr *tfc.CapExceededError
	switch {
	case tfc.IsNotFound(err):
		writeError(w, http.StatusNotFound, msg, err)
	case errors.Is(err, tfc.ErrDuplicateID) || errors.As(err, &capErr):
		writeError(w, http.StatusConflict, msg, err)
	case tfc.IsClientError(err):
		writeError(w, http.StatusBadRequest, msg, err)
	default:
		writeError(w, http.StatusInternalServerError, msg, err)
	}
}
