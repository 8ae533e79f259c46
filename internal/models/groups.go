package models

import "database/sql"

type Group struct {
	ID        int            `json:"id,omitempty" db:"id,omitempty"`
	Name      string         `json:"name,omitempty" db:"name,omitempty"`
	OwnerID   int            `json:"owner_id,omitempty" db:"owner_id,omitempty"`
	CreatedAt sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// GroupDetail is a group with its member projections.
type GroupDetail struct {
	Group
	Members []GroupMemberDetail `json:"members"`
}
