package tfc

// =============================================================================
// SUMMARY - Aggregation over an arbitrary set of payments
// =============================================================================

// Summary totals a filtered set of payments ("this quarter", "all time")
// for display and export. Plain fold; the parts stay consistent with the
// per-payment rounding because stored values are already rounded.
type Summary struct {
	Count           int
	Amount          Money
	ParentPaid      Money
	GovernmentTopUp Money
}

// Summarize folds payments into totals.
func Summarize(payments []Payment) Summary {
	s := Summary{
		Amount:          Zero(),
		ParentPaid:      Zero(),
		GovernmentTopUp: Zero(),
	}
	for _, p := range payments {
		s.Count++
		s.Amount = s.Amount.Add(p.Amount)
		s.ParentPaid = s.ParentPaid.Add(p.ParentPaid)
		s.GovernmentTopUp = s.GovernmentTopUp.Add(p.GovernmentTopUp)
	}
	return s
}
