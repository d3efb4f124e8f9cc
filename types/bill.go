package types

import (
	"encoding/json"
	"time"
)

// ShareStatus is the payment state of a single member's share of a bill.
type ShareStatus string

const (
	ShareUnpaid          ShareStatus = "Unpaid"
	SharePendingApproval ShareStatus = "Pending Approval"
	SharePaid            ShareStatus = "Paid"
	// ShareOverdue is a derived display state (due date passed and share not
	// Paid), never stored by the server.
	ShareOverdue ShareStatus = "Overdue"
)

// BillClassification buckets a whole bill for the manager's list filters.
type BillClassification string

const (
	BillOverdue        BillClassification = "Overdue"
	BillApproved       BillClassification = "Approved"
	BillPendingPayment BillClassification = "Pending Payment"
)

// BillShare is one member's portion of a bill. Exactly one share per member
// per bill.
type BillShare struct {
	User     UserRef     `json:"userId"`
	UserName string      `json:"userName,omitempty"`
	Amount   float64     `json:"amount"`
	Status   ShareStatus `json:"status"`
}

// UserID returns the normalized member id for this share.
func (s BillShare) UserID() string {
	return s.User.ID()
}

// DisplayName prefers the flat userName field, falling back to the name
// embedded in the user reference.
func (s BillShare) DisplayName() string {
	if s.UserName != "" {
		return s.UserName
	}
	return s.User.Name
}

// Bill is a shared expense split among room members.
type Bill struct {
	ID          string      `json:"id"`
	KhataID     string      `json:"khataId"`
	Title       string      `json:"title"`
	TotalAmount float64     `json:"totalAmount"`
	DueDate     time.Time   `json:"dueDate"`
	Category    string      `json:"category,omitempty"`
	Shares      []BillShare `json:"shares"`
}

func (b *Bill) UnmarshalJSON(data []byte) error {
	type alias Bill
	aux := struct {
		*alias
		MongoID string          `json:"_id"`
		DueDate json.RawMessage `json:"dueDate"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = aux.MongoID
	}
	b.DueDate = looseTime(aux.DueDate)
	return nil
}

// ShareFor returns the share belonging to memberID, if any.
func (b Bill) ShareFor(memberID string) (BillShare, bool) {
	for _, s := range b.Shares {
		if s.UserID() == memberID {
			return s, true
		}
	}
	return BillShare{}, false
}

// Classify buckets the bill for list filtering: Overdue when the due date is
// in the past and any share is not Paid, Approved when every share is Paid,
// Pending Payment otherwise.
func (b Bill) Classify(now time.Time) BillClassification {
	allPaid := true
	for _, s := range b.Shares {
		if s.Status != SharePaid {
			allPaid = false
			break
		}
	}
	if allPaid {
		return BillApproved
	}
	if !b.DueDate.IsZero() && b.DueDate.Before(now) {
		return BillOverdue
	}
	return BillPendingPayment
}

// CreateBillParams is the payload for creating or replacing a bill.
type CreateBillParams struct {
	KhataID     string      `json:"khataId"`
	Title       string      `json:"title"`
	TotalAmount float64     `json:"totalAmount"`
	DueDate     time.Time   `json:"dueDate"`
	Category    string      `json:"category,omitempty"`
	Shares      []BillShare `json:"shares"`
}
