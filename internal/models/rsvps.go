package models

import "database/sql"

const (
	RsvpStatusPending = "PENDING"
	RsvpStatusYes     = "YES"
	RsvpStatusNo      = "NO"
	RsvpStatusMaybe   = "MAYBE"
)

type Rsvp struct {
	ID        int            `json:"id,omitempty" db:"id,omitempty"`
	MeetingID int            `json:"meeting_id,omitempty" db:"meeting_id,omitempty"`
	UserID    int            `json:"user_id,omitempty" db:"user_id,omitempty"`
	Status    string         `json:"status,omitempty" db:"status,omitempty"`
	CreatedAt sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

type RsvpWithUser struct {
	Rsvp
	User UserSummary `json:"user"`
}

func ValidRsvpStatus(s string) bool {
	switch s {
	case RsvpStatusPending, RsvpStatusYes, RsvpStatusNo, RsvpStatusMaybe:
		return true
	}
	return false
}
