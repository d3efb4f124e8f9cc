// Package aggregate implements the pure reductions that turn raw
// bill/meal/deposit/expense streams into per-member and room-wide financial
// summaries. Every function is a commutative fold over its input slice:
// iteration order never affects the result, and running an aggregation twice
// over the same input yields identical output.
package aggregate

import (
	"time"

	"github.com/Xantonozar/billkhata-go/pkg/valueobjects"
	"github.com/Xantonozar/billkhata-go/types"
)

// BillTotals buckets share amounts by payment status. BillsDue is always the
// sum of the other three.
type BillTotals struct {
	Paid     valueobjects.Money
	Pending  valueobjects.Money
	Unpaid   valueobjects.Money
	BillsDue valueobjects.Money
}

// MemberBillTotals scans every bill's shares for the given member and buckets
// the share amounts: Paid, Pending Approval, and everything else as Unpaid.
func MemberBillTotals(bills []types.Bill, memberID string) BillTotals {
	t := BillTotals{
		Paid:    valueobjects.Zero(),
		Pending: valueobjects.Zero(),
		Unpaid:  valueobjects.Zero(),
	}
	for _, bill := range bills {
		for _, share := range bill.Shares {
			if share.UserID() != memberID {
				continue
			}
			addShare(&t, share)
		}
	}
	t.BillsDue = t.Paid.Add(t.Pending).Add(t.Unpaid)
	return t
}

// RoomBillTotals buckets every share of every bill, room-wide.
func RoomBillTotals(bills []types.Bill) BillTotals {
	t := BillTotals{
		Paid:    valueobjects.Zero(),
		Pending: valueobjects.Zero(),
		Unpaid:  valueobjects.Zero(),
	}
	for _, bill := range bills {
		for _, share := range bill.Shares {
			addShare(&t, share)
		}
	}
	t.BillsDue = t.Paid.Add(t.Pending).Add(t.Unpaid)
	return t
}

func addShare(t *BillTotals, share types.BillShare) {
	amount := valueobjects.NewFromFloat(share.Amount)
	switch share.Status {
	case types.SharePaid:
		t.Paid = t.Paid.Add(amount)
	case types.SharePendingApproval:
		t.Pending = t.Pending.Add(amount)
	default:
		t.Unpaid = t.Unpaid.Add(amount)
	}
}

// ClassifyBills groups bills by their manager-list classification.
func ClassifyBills(bills []types.Bill, now time.Time) map[types.BillClassification][]types.Bill {
	out := make(map[types.BillClassification][]types.Bill)
	for _, b := range bills {
		c := b.Classify(now)
		out[c] = append(out[c], b)
	}
	return out
}

// DisplayStatus resolves the derived Overdue state for a single share: a
// share that is not Paid on a bill whose due date has passed displays as
// Overdue. The stored status is never mutated.
func DisplayStatus(bill types.Bill, share types.BillShare, now time.Time) types.ShareStatus {
	if share.Status != types.SharePaid && !bill.DueDate.IsZero() && bill.DueDate.Before(now) {
		return types.ShareOverdue
	}
	return share.Status
}
