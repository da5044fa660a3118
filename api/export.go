package api

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightkite/tfc-engine/tfc"
)

// =============================================================================
// CSV EXPORT
// =============================================================================

// ExportPayments streams a child's payment history as CSV, with a totals
// row computed by the same fold the JSON endpoints use, so exported
// numbers always agree with the API. ?quarter=current restricts to the
// active window.
func (h *Handler) ExportPayments(w http.ResponseWriter, r *http.Request) {
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

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("payments-%s.csv", id)))

	cw := csv.NewWriter(w)
	cw.Write([]string{"date", "description", "amount", "parent_paid", "government_top_up"})
	for _, p := range payments {
		cw.Write([]string{
			p.Date.Format("2006-01-02"),
			p.Description,
			p.Amount.String(),
			p.ParentPaid.String(),
			p.GovernmentTopUp.String(),
		})
	}

	totals := tfc.Summarize(payments)
	cw.Write([]string{
		"",
		fmt.Sprintf("total (%d payments)", totals.Count),
		totals.Amount.Round2().String(),
		totals.ParentPaid.Round2().String(),
		totals.GovernmentTopUp.Round2().String(),
	})
	cw.Flush()
}
