package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Xantonozar/billkhata-go/pkg/valueobjects"
	"github.com/Xantonozar/billkhata-go/types"
)

// TotalMeals sums totalMeals across all records in scope.
func TotalMeals(meals []types.MealRecord) decimal.Decimal {
	total := decimal.Zero
	for _, m := range meals {
		total = total.Add(decimal.NewFromFloat(m.TotalMeals))
	}
	return total
}

// MemberMeals sums totalMeals for one member.
func MemberMeals(meals []types.MealRecord, memberID string) decimal.Decimal {
	total := decimal.Zero
	for _, m := range meals {
		if m.UserID() == memberID {
			total = total.Add(decimal.NewFromFloat(m.TotalMeals))
		}
	}
	return total
}

// MealRate derives cost per meal unit: approved expense total divided by
// total meal count. Zero meals yields a zero rate, never NaN or infinity.
// The rate is kept at full precision; Round(2) is applied only for display.
func MealRate(expenses []types.Expense, meals []types.MealRecord) decimal.Decimal {
	return ApprovedExpenseTotal(expenses).DivBy(TotalMeals(meals)).Amount()
}

// MemberMealCost is a member's meal count multiplied by the room meal rate,
// both at full precision.
func MemberMealCost(meals []types.MealRecord, memberID string, rate decimal.Decimal) valueobjects.Money {
	return valueobjects.NewFromDecimal(MemberMeals(meals, memberID).Mul(rate))
}

// MealTakers returns the members with the minimum and maximum meal sums.
// Ties break deterministically by ascending member id. With no meal records
// both default to {Name: "N/A", Count: 0}.
func MealTakers(meals []types.MealRecord, members []types.Member) (min, max types.MealTaker) {
	min = types.MealTaker{Name: "N/A", Count: 0}
	max = types.MealTaker{Name: "N/A", Count: 0}

	perMember := make(map[string]decimal.Decimal)
	for _, m := range meals {
		id := m.UserID()
		if id == "" {
			continue
		}
		perMember[id] = perMember[id].Add(decimal.NewFromFloat(m.TotalMeals))
	}
	if len(perMember) == 0 {
		return min, max
	}

	names := make(map[string]string, len(members))
	for _, mb := range members {
		names[mb.ID] = mb.Name
	}

	ids := make([]string, 0, len(perMember))
	for id := range perMember {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	minID, maxID := ids[0], ids[0]
	for _, id := range ids[1:] {
		if perMember[id].LessThan(perMember[minID]) {
			minID = id
		}
		if perMember[id].GreaterThan(perMember[maxID]) {
			maxID = id
		}
	}

	minCount, _ := perMember[minID].Float64()
	maxCount, _ := perMember[maxID].Float64()
	min = types.MealTaker{Name: nameOrID(names, minID), Count: minCount}
	max = types.MealTaker{Name: nameOrID(names, maxID), Count: maxCount}
	return min, max
}

func nameOrID(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}
