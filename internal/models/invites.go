package models

import "database/sql"

const (
	InviteStatusPending  = "PENDING"
	InviteStatusAccepted = "ACCEPTED"
	InviteStatusDeclined = "DECLINED"
	InviteStatusExpired  = "EXPIRED"
)

type Invite struct {
	ID           int            `json:"id,omitempty" db:"id,omitempty"`
	Token        string         `json:"token,omitempty" db:"token,omitempty"`
	SenderID     int            `json:"sender_id,omitempty" db:"sender_id,omitempty"`
	InviteeID    sql.NullInt64  `json:"invitee_id,omitempty" db:"invitee_id,omitempty"`
	InviteeEmail string         `json:"invitee_email,omitempty" db:"invitee_email,omitempty"`
	GroupID      sql.NullInt64  `json:"group_id,omitempty" db:"group_id,omitempty"`
	MeetingID    sql.NullInt64  `json:"meeting_id,omitempty" db:"meeting_id,omitempty"`
	Status       string         `json:"status,omitempty" db:"status,omitempty"`
	ExpiresAt    sql.NullString `json:"expires_at,omitempty" db:"expires_at,omitempty"`
	CreatedAt    sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt    sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// MeetingSummary is the slim meeting projection attached to invites.
type MeetingSummary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	DateTime string `json:"date_time"`
}

type InviteDetail struct {
	Invite
	Sender  UserSummary     `json:"sender"`
	Group   *Group          `json:"group,omitempty"`
	Meeting *MeetingSummary `json:"meeting,omitempty"`
}
