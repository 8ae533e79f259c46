package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

const (
	MeetingStatusDraft         = "DRAFT"
	MeetingStatusPendingQuorum = "PENDING_QUORUM"
	MeetingStatusConfirmed     = "CONFIRMED"
	MeetingStatusCancelled     = "CANCELLED"
)

const (
	RecurrenceNone     = "NONE"
	RecurrenceWeekly   = "WEEKLY"
	RecurrenceBiweekly = "BIWEEKLY"
	RecurrenceMonthly  = "MONTHLY"
)

// DateTimeLayout is how all DATETIME columns are written and scanned.
const DateTimeLayout = "2006-01-02 15:04:05"

type Meeting struct {
	ID              int                 `json:"id,omitempty" db:"id,omitempty"`
	Title           string              `json:"title,omitempty" db:"title,omitempty"`
	Description     sql.NullString      `json:"description,omitempty" db:"description,omitempty"`
	OrganizerID     int                 `json:"organizer_id,omitempty" db:"organizer_id,omitempty"`
	GroupID         sql.NullInt64       `json:"group_id,omitempty" db:"group_id,omitempty"`
	DateTime        string              `json:"date_time,omitempty" db:"date_time,omitempty"`
	DurationMinutes int                 `json:"duration_minutes,omitempty" db:"duration_minutes,omitempty"`
	QuorumThreshold int                 `json:"quorum_threshold,omitempty" db:"quorum_threshold,omitempty"`
	Recurrence      string              `json:"recurrence,omitempty" db:"recurrence,omitempty"`
	Status          string              `json:"status,omitempty" db:"status,omitempty"`
	LocationName    sql.NullString      `json:"location_name,omitempty" db:"location_name,omitempty"`
	LocationAddress sql.NullString      `json:"location_address,omitempty" db:"location_address,omitempty"`
	LocationPlaceID sql.NullString      `json:"location_place_id,omitempty" db:"location_place_id,omitempty"`
	LocationLat     decimal.NullDecimal `json:"location_lat,omitempty" db:"location_lat,omitempty"`
	LocationLng     decimal.NullDecimal `json:"location_lng,omitempty" db:"location_lng,omitempty"`
	ParentMeetingID sql.NullInt64       `json:"parent_meeting_id,omitempty" db:"parent_meeting_id,omitempty"`
	ReminderSentAt  sql.NullString      `json:"reminder_sent_at,omitempty" db:"reminder_sent_at,omitempty"`
	CreatedAt       sql.NullString      `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt       sql.NullString      `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// MeetingDetail is a meeting with its organizer and RSVP projections.
type MeetingDetail struct {
	Meeting
	Organizer UserSummary    `json:"organizer"`
	Rsvps     []RsvpWithUser `json:"rsvps"`
}

func ValidMeetingStatus(s string) bool {
	switch s {
	case MeetingStatusDraft, MeetingStatusPendingQuorum, MeetingStatusConfirmed, MeetingStatusCancelled:
		return true
	}
	return false
}

func ValidRecurrence(r string) bool {
	switch r {
	case RecurrenceNone, RecurrenceWeekly, RecurrenceBiweekly, RecurrenceMonthly:
		return true
	}
	return false
}
