package types

import (
	"encoding/json"
	"time"
)

// Expense is a shopping expense drawn from the room fund. Approved expenses
// are the numerator of the meal rate.
type Expense struct {
	ID         string         `json:"id"`
	KhataID    string         `json:"khataId"`
	User       UserRef        `json:"userId"`
	Amount     float64        `json:"amount"`
	Items      string         `json:"items"`
	Notes      string         `json:"notes,omitempty"`
	ReceiptURL string         `json:"receiptUrl,omitempty"`
	Status     ApprovalStatus `json:"status"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func (e *Expense) UnmarshalJSON(data []byte) error {
	type alias Expense
	aux := struct {
		*alias
		MongoID   string          `json:"_id"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = aux.MongoID
	}
	e.CreatedAt = looseTime(aux.CreatedAt)
	return nil
}

// UserID returns the normalized member id for this expense.
func (e Expense) UserID() string {
	return e.User.ID()
}
