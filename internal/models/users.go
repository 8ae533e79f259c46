package models

import "database/sql"

type User struct {
	ID        int            `json:"id,omitempty" db:"id,omitempty"`
	Email     string         `json:"email,omitempty" db:"email,omitempty"`
	Name      string         `json:"name,omitempty" db:"name,omitempty"`
	Password  string         `json:"password,omitempty" db:"password_hash,omitempty"`
	CreatedAt sql.NullString `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt sql.NullString `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// UserSummary is the minimal projection joined onto meetings, RSVPs and invites.
type UserSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
