package types

import (
	"encoding/json"
	"time"
)

// ApprovalStatus is the manager-review lifecycle shared by deposits and
// expenses. Only Approved records count toward fund balance and meal cost.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "Pending"
	StatusApproved ApprovalStatus = "Approved"
	StatusRejected ApprovalStatus = "Rejected"
)

// Deposit is money a member adds to the room fund.
type Deposit struct {
	ID            string         `json:"id"`
	KhataID       string         `json:"khataId"`
	User          UserRef        `json:"userId"`
	Amount        float64        `json:"amount"`
	PaymentMethod string         `json:"paymentMethod"`
	TransactionID string         `json:"transactionId,omitempty"`
	ScreenshotURL string         `json:"screenshotUrl,omitempty"`
	Status        ApprovalStatus `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (d *Deposit) UnmarshalJSON(data []byte) error {
	type alias Deposit
	aux := struct {
		*alias
		MongoID   string          `json:"_id"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{alias: (*alias)(d)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if d.ID == "" {
		d.ID = aux.MongoID
	}
	d.CreatedAt = looseTime(aux.CreatedAt)
	return nil
}

// UserID returns the normalized member id for this deposit.
func (d Deposit) UserID() string {
	return d.User.ID()
}
