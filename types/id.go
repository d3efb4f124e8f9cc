package types

import (
	"encoding/json"
	"time"
)

// UserRef is a user reference as it appears in API payloads. The API is
// observed to send either a bare string id or an embedded object
// {"_id": "...", "name": "..."}; both are normalized here so aggregation
// code never branches on shape.
type UserRef struct {
	UserID string
	Name   string
}

// ID returns the normalized string id, empty when the reference is absent or
// had an unrecognizable shape.
func (r UserRef) ID() string {
	return r.UserID
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.UserID = s
		r.Name = ""
		return nil
	}

	var obj struct {
		MongoID string `json:"_id"`
		PlainID string `json:"id"`
		Name    string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		// Unrecognized shape (number, array): treat as absent rather than
		// failing the whole document, matching the silent-drop policy for
		// malformed fields.
		r.UserID = ""
		r.Name = ""
		return nil
	}

	r.UserID = obj.MongoID
	if r.UserID == "" {
		r.UserID = obj.PlainID
	}
	r.Name = obj.Name
	return nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.UserID)
}

// looseTime decodes a timestamp field leniently: a missing, null, or
// unparseable value becomes the zero time, so one bad record falls through
// the period filters instead of failing the whole collection decode.
func looseTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return time.Time{}
	}
	return t
}
