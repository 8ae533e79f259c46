package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"rndvx/internal/models"

	"github.com/matryer/is"
	_ "github.com/mattn/go-sqlite3"
)

const testSchema = `
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

CREATE TABLE meetings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    description TEXT,
    organizer_id INTEGER NOT NULL,
    group_id INTEGER NULL,
    date_time TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL DEFAULT 60,
    quorum_threshold INTEGER NOT NULL DEFAULT 3,
    recurrence TEXT NOT NULL DEFAULT 'NONE',
    status TEXT NOT NULL DEFAULT 'DRAFT',
    location_name TEXT NULL,
    location_address TEXT NULL,
    location_place_id TEXT NULL,
    location_lat TEXT NULL,
    location_lng TEXT NULL,
    parent_meeting_id INTEGER NULL,
    reminder_sent_at TEXT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE rsvps (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    meeting_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    status TEXT NOT NULL DEFAULT 'PENDING',
    created_at TEXT DEFAULT CURRENT_TIMESTAMP,
    updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (meeting_id, user_id)
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

CREATE TABLE location_votes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    meeting_id INTEGER NOT NULL,
    user_id INTEGER NOT NULL,
    place_id TEXT NOT NULL,
    place_name TEXT NOT NULL,
    place_address TEXT NULL,
    lat TEXT NULL,
    lng TEXT NULL,
    created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`

// openTestDB returns an in-memory database with the full schema. A single
// connection keeps the memory database alive for the life of the test.
func openTestDB(tb testing.TB) *sql.DB {
	tb.Helper()
	is := is.New(tb)

	db, err := sql.Open("sqlite3", ":memory:")
	is.NoErr(err)
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	is.NoErr(err)

	tb.Cleanup(func() { db.Close() })
	return db
}

type sentMail struct {
	kind string
	to   string
}

// fakeMailer records sends; services fire mail in goroutines, so it locks.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) record(kind, to string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{kind: kind, to: to})
}

func (f *fakeMailer) SendMeetingCreated(to, title string, dateTime time.Time) error {
	f.record("created", to)
	return nil
}

func (f *fakeMailer) SendMeetingConfirmed(to, title string, dateTime time.Time) error {
	f.record("confirmed", to)
	return nil
}

func (f *fakeMailer) SendMeetingCancelled(to, title string) error {
	f.record("cancelled", to)
	return nil
}

func (f *fakeMailer) SendMeetingReminder(to, title string, dateTime time.Time) error {
	f.record("reminder", to)
	return nil
}

func (f *fakeMailer) SendRsvpConfirmation(to, title, status string) error {
	f.record("rsvp", to)
	return nil
}

func (f *fakeMailer) SendInvite(to, senderName, target, inviteURL string, expiresAt *time.Time) error {
	f.record("invite", to)
	return nil
}

func (f *fakeMailer) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.sent {
		if m.kind == kind {
			n++
		}
	}
	return n
}

func seedUser(tb testing.TB, db *sql.DB, email, name string) int {
	tb.Helper()
	is := is.New(tb)
	res, err := db.Exec(`INSERT INTO users (email, name, password_hash) VALUES (?, ?, ?)`, email, name, "x")
	is.NoErr(err)
	id, err := res.LastInsertId()
	is.NoErr(err)
	return int(id)
}

func seedMeeting(tb testing.TB, db *sql.DB, organizerID, quorum int, status string) int {
	tb.Helper()
	is := is.New(tb)
	dateTime := time.Now().UTC().Add(48 * time.Hour).Format(models.DateTimeLayout)
	res, err := db.Exec(`
		INSERT INTO meetings (title, organizer_id, date_time, quorum_threshold, status)
		VALUES (?, ?, ?, ?, ?)
	`, "Board games night", organizerID, dateTime, quorum, status)
	is.NoErr(err)
	id, err := res.LastInsertId()
	is.NoErr(err)
	return int(id)
}

func seedGroup(tb testing.TB, db *sql.DB, ownerID int, name string) int {
	tb.Helper()
	is := is.New(tb)
	res, err := db.Exec(`INSERT INTO user_groups (name, owner_id) VALUES (?, ?)`, name, ownerID)
	is.NoErr(err)
	id, err := res.LastInsertId()
	is.NoErr(err)
	_, err = db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		id, ownerID, models.RoleOwner)
	is.NoErr(err)
	return int(id)
}

func meetingStatus(tb testing.TB, db *sql.DB, meetingID int) string {
	tb.Helper()
	is := is.New(tb)
	var status string
	err := db.QueryRow(`SELECT status FROM meetings WHERE id = ?`, meetingID).Scan(&status)
	is.NoErr(err)
	return status
}

func domainStatus(tb testing.TB, err error) int {
	tb.Helper()
	domainErr, ok := err.(*Error)
	if !ok {
		tb.Fatalf("expected domain error, got %v", err)
	}
	return domainErr.Status
}

// waitFor polls a condition for async work such as goroutine mail sends.
func waitFor(tb testing.TB, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	tb.Fatal("condition not met in time")
}

var testCtx = context.Background()
