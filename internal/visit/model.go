// Package visit provides the visitor management domain model shared by the
// API client, the lobby console and the report writers.
package visit

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Status is the approval state of a visit request.
type Status string

const (
	Pending  Status = "pending"
	Approved Status = "approved"
	Rejected Status = "rejected"
	NoShow   Status = "no_show"
	Canceled Status = "canceled"
	Expired  Status = "expired"
)

// ValidStatuses is the set of statuses the API reports.
var ValidStatuses = []Status{Pending, Approved, Rejected, NoShow, Canceled, Expired}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns a human-readable label for the status.
func (s Status) Label() string {
	switch s {
	case Pending:
		return "Pending"
	case Approved:
		return "Approved"
	case Rejected:
		return "Rejected"
	case NoShow:
		return "No Show"
	case Canceled:
		return "Canceled"
	case Expired:
		return "Expired"
	default:
		return string(s)
	}
}

// Type represents how a visit came about.
type Type string

const (
	Scheduled Type = "scheduled"
	WalkIn    Type = "walkin"
)

// IsValid checks if a visit type is recognized.
func (t Type) IsValid() bool {
	return t == Scheduled || t == WalkIn
}

// Label returns a human-readable label for the visit type.
func (t Type) Label() string {
	switch t {
	case Scheduled:
		return "Scheduled"
	case WalkIn:
		return "Walk-in"
	default:
		return string(t)
	}
}

// Visit is one appointment as returned by the lobby and visitor endpoints.
// The lobby endpoints name the host host_name, the rest employee_name.
type Visit struct {
	ID           int64     `json:"visit_id"`
	VisitorID    int64     `json:"visitor_id,omitempty"`
	VisitorName  string    `json:"visitor_name"`
	VisitorEmail string    `json:"visitor_email,omitempty"`
	EmployeeName string    `json:"employee_name,omitempty"`
	HostName     string    `json:"host_name,omitempty"`
	Purpose      string    `json:"purpose"`
	Scheduled    Timestamp `json:"scheduled_time"`
	Type         Type      `json:"visit_type"`
	Status       Status    `json:"status"`
	CheckedIn    bool      `json:"is_checked_in"`
	CheckInTime  Timestamp `json:"check_in_time"`
	CheckedOut   bool      `json:"is_checked_out"`
	CheckOutTime Timestamp `json:"check_out_time"`
	Notes        string    `json:"notes,omitempty"`
}

// Host returns the employee the visitor is meeting.
func (v *Visit) Host() string {
	if v.EmployeeName != "" {
		return v.EmployeeName
	}
	return v.HostName
}

// Visitor is the person submitted through the public registration form.
type Visitor struct {
	ID       int64  `json:"id,omitempty"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Contact  string `json:"contact,omitempty" validate:"omitempty,contact"`
	Address  string `json:"address,omitempty"`
}

// Request is a visit invitation as the employee sees it.
type Request struct {
	ID             int64     `json:"id"`
	Purpose        string    `json:"purpose"`
	Scheduled      Timestamp `json:"scheduled_time"`
	Status         Status    `json:"status"`
	Type           Type      `json:"visit_type"`
	Token          string    `json:"token,omitempty"`
	InvitationLink string    `json:"invitation_link,omitempty"`
	Visitor        *Visitor  `json:"visitor,omitempty"`
	EmployeeName   string    `json:"employee_name,omitempty"`
	CheckedIn      bool      `json:"is_checked_in"`
	CheckedOut     bool      `json:"is_checked_out"`
	CreatedAt      Timestamp `json:"created_at"`
}

// Role tags carried in User.Groups.
const (
	RoleLobbyAttendant = "lobby_attendant"
	RoleEmployee       = "employee"
)

// User is the authenticated account.
type User struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Groups    []string `json:"groups"`
}

// HasRole reports whether the user belongs to the named group.
func (u *User) HasRole(role string) bool {
	for _, g := range u.Groups {
		if g == role {
			return true
		}
	}
	return false
}

// IsLobbyAttendant reports whether the user staffs the lobby.
func (u *User) IsLobbyAttendant() bool { return u.HasRole(RoleLobbyAttendant) }

// IsEmployee reports whether the user hosts visitors.
func (u *User) IsEmployee() bool { return u.HasRole(RoleEmployee) }

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Timestamp is a time decoded leniently from the API. Null, empty and
// unparseable values decode to the zero time instead of failing the whole
// payload.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses s with the layouts the API is known to emit.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		ts.Time = time.Time{}
		return nil
	}
	ts.Time, _ = ParseTimestamp(s)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Format(time.RFC3339))
}

// Format renders the timestamp, or "" when unset.
func (ts Timestamp) Format(layout string) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Time.Format(layout)
}
