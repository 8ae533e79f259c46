package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type LocationVote struct {
	ID           int                 `json:"id,omitempty" db:"id,omitempty"`
	MeetingID    int                 `json:"meeting_id,omitempty" db:"meeting_id,omitempty"`
	UserID       int                 `json:"user_id,omitempty" db:"user_id,omitempty"`
	PlaceID      string              `json:"place_id,omitempty" db:"place_id,omitempty"`
	PlaceName    string              `json:"place_name,omitempty" db:"place_name,omitempty"`
	PlaceAddress sql.NullString      `json:"place_address,omitempty" db:"place_address,omitempty"`
	Lat          decimal.NullDecimal `json:"lat,omitempty" db:"lat,omitempty"`
	Lng          decimal.NullDecimal `json:"lng,omitempty" db:"lng,omitempty"`
	CreatedAt    sql.NullString      `json:"created_at,omitempty" db:"created_at,omitempty"`
}

// VoteTally is one row of the per-meeting tally, grouped by place.
type VoteTally struct {
	PlaceID   string `json:"place_id"`
	PlaceName string `json:"place_name"`
	Votes     int    `json:"votes"`
}
