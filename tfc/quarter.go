package tfc

import (
	"math"
	"time"
)

// =============================================================================
// QUARTER - Rolling 3-calendar-month window anchored to a reconfirmation date
// =============================================================================

// Quarter is the half-open interval [Start, End) of one 3-calendar-month
// entitlement period. End is always Start plus 3 calendar months.
//
// Quarters are NOT calendar quarters (Jan-Mar etc.): they are laid out
// back-to-back from the child's reconfirmation date, so a child reconfirmed
// on 2024-02-14 has quarters [Feb 14, May 14), [May 14, Aug 14), ...
type Quarter struct {
	Start time.Time
	End   time.Time
}

// QuarterFor returns the quarter that contains ref, rolling forward from
// the anchor in 3-month steps.
//
// Month arithmetic uses time.AddDate normalized-overflow semantics: adding
// 3 months to Jan 31 yields May 1 (Apr 31 normalized). One convention,
// applied everywhere, so month-end anchors can never produce two different
// windows from two different call sites.
//
// If ref is before the anchor (reconfirmation date in the future), the
// first quarter [anchor, anchor+3mo) is returned.
func QuarterFor(anchor, ref time.Time) (Quarter, error) {
	if anchor.IsZero() || ref.IsZero() {
		return Quarter{}, ErrInvalidDate
	}

	start := dateOf(anchor)
	day := dateOf(ref)

	for {
		next := start.AddDate(0, 3, 0)
		if next.After(day) {
			return Quarter{Start: start, End: next}, nil
		}
		start = next
	}
}

// Contains reports whether t falls inside the quarter. Start is inclusive,
// End is exclusive: a payment made at the exact rollover instant belongs to
// the new quarter.
func (q Quarter) Contains(t time.Time) bool {
	d := dateOf(t)
	return !d.Before(q.Start) && d.Before(q.End)
}

// DaysRemaining returns how many whole or partial days are left in the
// quarter as of ref, for display ("your allowance resets in N days").
// Never negative.
func (q Quarter) DaysRemaining(ref time.Time) int {
	remaining := q.End.Sub(dateOf(ref))
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

func (q Quarter) String() string {
	return "[" + q.Start.Format("2006-01-02") + ", " + q.End.Format("2006-01-02") + ")"
}

// dateOf normalizes to midnight UTC. All quarter math runs on civil dates;
// the wall-clock time of a payment never changes which quarter it lands in.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDate builds a civil date in UTC. Convenience for callers and tests.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
