package aggregate

import (
	"github.com/Xantonozar/billkhata-go/types"
)

// Collections is one period's worth of raw data for a room, as fetched from
// the API. Aggregation never mutates it.
type Collections struct {
	Bills    []types.Bill
	Deposits []types.Deposit
	Expenses []types.Expense
	Meals    []types.MealRecord
	Members  []types.Member
}

// MonthlySummary assembles the room-wide roll-up for the period the
// collections were fetched for.
func MonthlySummary(c Collections) types.MonthlySummary {
	billTotals := RoomBillTotals(c.Bills)
	mealCount := TotalMeals(c.Meals)
	rate := MealRate(c.Expenses, c.Meals)
	minTaker, maxTaker := MealTakers(c.Meals, c.Members)

	totalMeals, _ := mealCount.Float64()
	displayRate, _ := rate.Round(2).Float64()

	return types.MonthlySummary{
		TotalBills:    billTotals.BillsDue.Float64(),
		TotalPaid:     billTotals.Paid.Float64(),
		TotalPending:  billTotals.Pending.Float64(),
		TotalUnpaid:   billTotals.Unpaid.Float64(),
		TotalDeposits: ApprovedDepositTotal(c.Deposits).Float64(),
		TotalMealCost: ApprovedExpenseTotal(c.Expenses).Float64(),
		TotalMeals:    totalMeals,
		MealRate:      displayRate,
		TotalDue:      TotalDue(c.Deposits, c.Expenses).Float64(),
		MinMealTaker:  minTaker,
		MaxMealTaker:  maxTaker,
	}
}

// MemberSummaries assembles one roll-up row per member. The meal rate is
// computed once at full precision and shared across members.
func MemberSummaries(c Collections) []types.MemberSummary {
	rate := MealRate(c.Expenses, c.Meals)

	out := make([]types.MemberSummary, 0, len(c.Members))
	for _, member := range c.Members {
		billTotals := MemberBillTotals(c.Bills, member.ID)
		mealCount, _ := MemberMeals(c.Meals, member.ID).Float64()

		out = append(out, types.MemberSummary{
			MemberID:    member.ID,
			Name:        member.Name,
			BillsDue:    billTotals.BillsDue.Float64(),
			Paid:        billTotals.Paid.Float64(),
			Pending:     billTotals.Pending.Float64(),
			Unpaid:      billTotals.Unpaid.Float64(),
			TotalMeals:  mealCount,
			Deposits:    MemberDepositTotal(c.Deposits, member.ID).Float64(),
			RefundOrDue: RefundOrDue(c.Deposits, c.Meals, member.ID, rate).Float64(),
		})
	}
	return out
}
