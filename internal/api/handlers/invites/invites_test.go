package invites

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rndvx/internal/repositories/sqlconnect"
	"rndvx/pkg/utils"

	"github.com/matryer/is"
	_ "github.com/mattn/go-sqlite3"
)

const inviteSchema = `
CREATE TABLE users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL DEFAULT '',
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE user_groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    owner_id INTEGER NOT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE group_members (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    group_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    role TEXT NOT NULL DEFAULT 'MEMBER',
    joined_at TEXT DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (group_id, user_id)
);

CREATE TABLE invites (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    token TEXT NOT NULL UNIQUE,
    sender_id INTEGER NOT NULL,
    invitee_id INTEGER NULL,
    invitee_email TEXT NOT NULL,
    group_id INTEGER NULL,
    meeting_id INTEGER NULL,
    status TEXT NOT NULL DEFAULT 'PENDING',
    expires_at TEXT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

// swapInviteDB points the package-level connection at an in-memory database
// for the life of the test.
func swapInviteDB(tb testing.TB) *sql.DB {
	tb.Helper()
	is := is.New(tb)

	db, err := sql.Open("sqlite3", ":memory:")
	is.NoErr(err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(inviteSchema)
	is.NoErr(err)

	prev := sqlconnect.DB
	sqlconnect.DB = db
	tb.Cleanup(func() {
		sqlconnect.DB = prev
		db.Close()
	})
	return db
}

func authedRequest(method, target, body string, userID int) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), utils.ContextKey("userId"), float64(userID))
	return req.WithContext(ctx)
}

func TestCreateInviteHandlerOmittedExpiryStoresNull(t *testing.T) {
	is := is.New(t)
	db := swapInviteDB(t)

	_, err := db.Exec(`INSERT INTO users (email, name) VALUES ('ana@example.com', 'Ana')`)
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO user_groups (name, owner_id) VALUES ('Hiking Club', 1)`)
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (1, 1, 'OWNER')`)
	is.NoErr(err)

	req := authedRequest(http.MethodPost, "/invites/", `{"invitee_email":"bob@example.com","group_id":1}`, 1)
	rec := httptest.NewRecorder()
	CreateInviteHandler(rec, req)

	is.Equal(rec.Code, http.StatusCreated)

	var expiresAt sql.NullString
	is.NoErr(db.QueryRow(`SELECT expires_at FROM invites`).Scan(&expiresAt))
	is.True(!expiresAt.Valid) // an invite without expires_at never expires
}

func TestCreateInviteHandlerKeepsProvidedExpiry(t *testing.T) {
	is := is.New(t)
	db := swapInviteDB(t)

	_, err := db.Exec(`INSERT INTO users (email, name) VALUES ('ana@example.com', 'Ana')`)
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO user_groups (name, owner_id) VALUES ('Hiking Club', 1)`)
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (1, 1, 'OWNER')`)
	is.NoErr(err)

	body := `{"invitee_email":"bob@example.com","group_id":1,"expires_at":"2027-01-01T12:00:00Z"}`
	req := authedRequest(http.MethodPost, "/invites/", body, 1)
	rec := httptest.NewRecorder()
	CreateInviteHandler(rec, req)

	is.Equal(rec.Code, http.StatusCreated)

	var expiresAt sql.NullString
	is.NoErr(db.QueryRow(`SELECT expires_at FROM invites`).Scan(&expiresAt))
	is.True(expiresAt.Valid)
	is.Equal(expiresAt.String, "2027-01-01 12:00:00")
}
