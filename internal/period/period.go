// Package period implements the calendar-month and trailing-window selection
// used to scope bills, deposits, expenses, and meal queries.
package period

import (
	"fmt"
	"time"

	"github.com/Xantonozar/billkhata-go/types"
)

// Trailing window sizes selectable on the punctuality leaderboard.
const (
	LastMonth   = 1
	Last3Months = 3
	Last6Months = 6
	LastYear    = 12
)

// Period is an inclusive time range.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthOf returns the calendar month containing ref, from the first day
// 00:00:00 to the last day 23:59:59.999999999, in ref's location. Selection
// is by month/year equality, not a rolling 30-day window.
func MonthOf(ref time.Time) Period {
	year, month, _ := ref.Date()
	loc := ref.Location()
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return Period{Start: start, End: end}
}

// Trailing returns the window [now - months, now] using calendar-month
// arithmetic, not fixed day counts.
func Trailing(now time.Time, months int) Period {
	return Period{Start: now.AddDate(0, -months, 0), End: now}
}

// Contains reports whether t falls inside the period, inclusive on both
// bounds. A zero time is never contained: records whose date failed to parse
// fall through filters silently rather than raising.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(p.Start) && !t.After(p.End)
}

// Key returns a stable tag for the period's starting month, e.g. "2026-09".
// Fetches are tagged with this key so a stale response for a previously
// selected month can be discarded.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Start.Year(), int(p.Start.Month()))
}

// FilterBills keeps bills whose due date falls inside the period.
func FilterBills(bills []types.Bill, p Period) []types.Bill {
	out := make([]types.Bill, 0, len(bills))
	for _, b := range bills {
		if p.Contains(b.DueDate) {
			out = append(out, b)
		}
	}
	return out
}

// FilterDeposits keeps deposits created inside the period.
func FilterDeposits(deposits []types.Deposit, p Period) []types.Deposit {
	out := make([]types.Deposit, 0, len(deposits))
	for _, d := range deposits {
		if p.Contains(d.CreatedAt) {
			out = append(out, d)
		}
	}
	return out
}

// FilterExpenses keeps expenses created inside the period.
func FilterExpenses(expenses []types.Expense, p Period) []types.Expense {
	out := make([]types.Expense, 0, len(expenses))
	for _, e := range expenses {
		if p.Contains(e.CreatedAt) {
			out = append(out, e)
		}
	}
	return out
}

// Meals are not filtered client-side: the API's own date-range query
// parameters carry the period bounds so a whole room's meal history is never
// pulled into memory. Range returns those bounds.
func (p Period) Range() (start, end time.Time) {
	return p.Start, p.End
}
