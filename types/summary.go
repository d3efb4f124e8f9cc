package types

// MemberSummary is the per-member financial roll-up for a period. Computed,
// never stored.
type MemberSummary struct {
	MemberID    string  `json:"memberId"`
	Name        string  `json:"name"`
	BillsDue    float64 `json:"billsDue"`
	Paid        float64 `json:"paid"`
	Pending     float64 `json:"pending"`
	Unpaid      float64 `json:"unpaid"`
	TotalMeals  float64 `json:"totalMeals"`
	Deposits    float64 `json:"deposits"`
	RefundOrDue float64 `json:"refundOrDue"`
}

// MealTaker names a member together with their meal count for the min/max
// meal-taker cards.
type MealTaker struct {
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

// MonthlySummary is the room-wide roll-up for a period. Computed, never
// stored.
type MonthlySummary struct {
	TotalBills    float64   `json:"totalBills"`
	TotalPaid     float64   `json:"totalPaid"`
	TotalPending  float64   `json:"totalPending"`
	TotalUnpaid   float64   `json:"totalUnpaid"`
	TotalDeposits float64   `json:"totalDeposits"`
	TotalMealCost float64   `json:"totalMealCost"`
	TotalMeals    float64   `json:"totalMeals"`
	MealRate      float64   `json:"mealRate"`
	TotalDue      float64   `json:"totalDue"`
	MaxMealTaker  MealTaker `json:"maxMealTaker"`
	MinMealTaker  MealTaker `json:"minMealTaker"`
}

// PunctualityEntry is one leaderboard row: the percentage of a member's bill
// shares paid within a trailing window.
type PunctualityEntry struct {
	MemberID    string `json:"memberId"`
	Name        string `json:"name"`
	TotalShares int    `json:"totalShares"`
	PaidShares  int    `json:"paidShares"`
	Percent     int    `json:"percent"`
}
