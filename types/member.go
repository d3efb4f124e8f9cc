package types

import "encoding/json"

// MemberRole gates manager-only operations. MasterManager is a superset of
// Manager privileges (can add and edit other members).
type MemberRole string

const (
	RoleMember        MemberRole = "Member"
	RoleManager       MemberRole = "Manager"
	RoleMasterManager MemberRole = "MasterManager"
)

// IsManager reports whether the role carries manager privileges.
func (r MemberRole) IsManager() bool {
	return r == RoleManager || r == RoleMasterManager
}

// RoomStatus is the member's standing within a room.
type RoomStatus string

const (
	RoomStatusPending  RoomStatus = "Pending"
	RoomStatusApproved RoomStatus = "Approved"
)

// Member is a user of a room (khata).
type Member struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Role       MemberRole `json:"role"`
	RoomStatus RoomStatus `json:"roomStatus"`
	KhataID    string     `json:"khataId"`
	Phone      string     `json:"phone,omitempty"`
	WhatsApp   string     `json:"whatsapp,omitempty"`
	Facebook   string     `json:"facebook,omitempty"`
}

func (m *Member) UnmarshalJSON(data []byte) error {
	type alias Member
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	return nil
}

// CurrentUser is the authenticated user a pipeline runs on behalf of. It is
// passed explicitly into aggregation and action code rather than read from
// ambient context.
type CurrentUser struct {
	ID      string
	Name    string
	Role    MemberRole
	KhataID string
}
