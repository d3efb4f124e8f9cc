package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Xantonozar/billkhata-go/errors"
)

// RealtimeEventType names a push event from the realtime channel. The client
// treats every event as an invalidation signal (re-fetch and recompute); the
// payload is never interpreted for correctness.
type RealtimeEventType string

const (
	EventNewDeposit      RealtimeEventType = "new-deposit"
	EventNewExpense      RealtimeEventType = "new-expense"
	EventNewBill         RealtimeEventType = "new-bill"
	EventBillApproved    RealtimeEventType = "bill-approved"
	EventBillUpdated     RealtimeEventType = "bill-updated"
	EventDepositApproved RealtimeEventType = "deposit-approved"
	EventDepositRejected RealtimeEventType = "deposit-rejected"
	EventExpenseApproved RealtimeEventType = "expense-approved"
	EventExpenseRejected RealtimeEventType = "expense-rejected"
	EventMealUpdated     RealtimeEventType = "meal-updated"
	EventMealFinalized   RealtimeEventType = "meal-finalized"
	EventMemberApproved  RealtimeEventType = "member-approved"
)

// RoomTopic returns the room-scoped channel name for a khata.
func RoomTopic(khataID string) string {
	return "room-" + khataID
}

// UserTopic returns the user-scoped channel name.
func UserTopic(userID string) string {
	return "user-" + userID
}

// RealtimeEvent is a named push event scoped to a room or user topic.
type RealtimeEvent struct {
	ID        string            `json:"id"`
	Type      RealtimeEventType `json:"type"`
	KhataID   string            `json:"khataId,omitempty"`
	UserID    string            `json:"userId,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
}

// Validate checks the fields every published event must carry.
func (e RealtimeEvent) Validate() error {
	if e.ID == "" {
		return errors.ValidationFailed("invalid event", "event ID is required")
	}
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// Matches reports whether the event passes a subscriber's type filter. An
// empty filter list admits every event.
func (e RealtimeEvent) Matches(filters []RealtimeEventType) bool {
	if len(filters) == 0 {
		return true
	}
	for _, f := range filters {
		if e.Type == f {
			return true
		}
	}
	return false
}

// Subscriber delivers realtime events for a topic. Implementations exist for
// the redis pub/sub channel and for the websocket gateway.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, subscriberID string, filters ...RealtimeEventType) (<-chan RealtimeEvent, error)
	Unsubscribe(ctx context.Context, topic string, subscriberID string) error
	Shutdown(ctx context.Context) error
}

// NotificationSink receives user-facing outcome notices (the toast equivalents
// of the UI). Passed explicitly so aggregation and action code stays
// unit-testable without a UI tree.
type NotificationSink interface {
	Success(message string)
	Error(message string)
}
