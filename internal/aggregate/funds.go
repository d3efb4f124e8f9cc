package aggregate

import (
	"github.com/shopspring/decimal"

	"github.com/Xantonozar/billkhata-go/pkg/valueobjects"
	"github.com/Xantonozar/billkhata-go/types"
)

// ApprovedDepositTotal sums deposits with Approved status. Pending and
// Rejected deposits never count toward the fund balance.
func ApprovedDepositTotal(deposits []types.Deposit) valueobjects.Money {
	total := valueobjects.Zero()
	for _, d := range deposits {
		if d.Status == types.StatusApproved {
			total = total.Add(valueobjects.NewFromFloat(d.Amount))
		}
	}
	return total
}

// MemberDepositTotal sums one member's Approved deposits.
func MemberDepositTotal(deposits []types.Deposit, memberID string) valueobjects.Money {
	total := valueobjects.Zero()
	for _, d := range deposits {
		if d.Status == types.StatusApproved && d.UserID() == memberID {
			total = total.Add(valueobjects.NewFromFloat(d.Amount))
		}
	}
	return total
}

// ApprovedExpenseTotal sums expenses with Approved status; this is the total
// meal cost for the period.
func ApprovedExpenseTotal(expenses []types.Expense) valueobjects.Money {
	total := valueobjects.Zero()
	for _, e := range expenses {
		if e.Status == types.StatusApproved {
			total = total.Add(valueobjects.NewFromFloat(e.Amount))
		}
	}
	return total
}

// RefundOrDue computes a member's balance: approved deposits minus their meal
// cost (meal count times rate). Positive means a refund is owed to the
// member; negative means the member owes money. The sign alone drives the
// refund/due presentation.
func RefundOrDue(deposits []types.Deposit, meals []types.MealRecord, memberID string, rate decimal.Decimal) valueobjects.Money {
	return MemberDepositTotal(deposits, memberID).Sub(MemberMealCost(meals, memberID, rate))
}

// TotalDue is the room-wide counterpart: total approved deposits minus total
// approved expenses, same sign convention.
func TotalDue(deposits []types.Deposit, expenses []types.Expense) valueobjects.Money {
	return ApprovedDepositTotal(deposits).Sub(ApprovedExpenseTotal(expenses))
}
