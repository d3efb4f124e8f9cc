package types

import (
	"encoding/json"
	"math"
	"time"

	"github.com/Xantonozar/billkhata-go/errors"
)

var errQuarterStep = errors.ValidationFailed(
	"invalid meal quantity",
	"meal quantities must be non-negative multiples of 0.25",
)

// MealRecord tracks one member's meals for one calendar day. Submitting again
// for the same day overwrites (upsert semantics on the server).
type MealRecord struct {
	ID        string    `json:"id,omitempty"`
	KhataID   string    `json:"khataId"`
	User      UserRef   `json:"userId"`
	Date      time.Time `json:"date"`
	Breakfast float64   `json:"breakfast"`
	Lunch     float64   `json:"lunch"`
	Dinner    float64   `json:"dinner"`
	// TotalMeals is maintained by the server as breakfast+lunch+dinner.
	TotalMeals float64 `json:"totalMeals"`
	// Finalized is the manager's per-day lock; member edits are rejected by
	// the server once set.
	Finalized bool `json:"finalized,omitempty"`
}

func (m *MealRecord) UnmarshalJSON(data []byte) error {
	type alias MealRecord
	aux := struct {
		*alias
		MongoID string          `json:"_id"`
		Date    json.RawMessage `json:"date"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	m.Date = looseTime(aux.Date)
	return nil
}

// UserID returns the normalized member id for this record.
func (m MealRecord) UserID() string {
	return m.User.ID()
}

// IsQuarterStep reports whether a meal quantity is a non-negative multiple of
// 0.25 (half and quarter portions are allowed).
func IsQuarterStep(v float64) bool {
	if v < 0 {
		return false
	}
	scaled := v * 4
	return math.Abs(scaled-math.Round(scaled)) < 1e-9
}

// Validate checks the quarter-step rule on every meal field.
func (m MealRecord) Validate() error {
	for _, v := range []float64{m.Breakfast, m.Lunch, m.Dinner} {
		if !IsQuarterStep(v) {
			return errQuarterStep
		}
	}
	return nil
}

// SubmitMealParams is the payload for submitting (upserting) a day's meals.
type SubmitMealParams struct {
	KhataID   string    `json:"khataId"`
	UserID    string    `json:"userId"`
	Date      time.Time `json:"date"`
	Breakfast float64   `json:"breakfast"`
	Lunch     float64   `json:"lunch"`
	Dinner    float64   `json:"dinner"`
}

// Validate checks the quarter-step rule so a bad quantity is rejected before
// any network call is made.
func (p SubmitMealParams) Validate() error {
	for _, v := range []float64{p.Breakfast, p.Lunch, p.Dinner} {
		if !IsQuarterStep(v) {
			return errQuarterStep
		}
	}
	return nil
}
