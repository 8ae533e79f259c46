package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rndvx/internal/models"
	"rndvx/pkg/utils"

	"github.com/shopspring/decimal"
)

type MeetingService struct {
	DB     *sql.DB
	Mailer Mailer
}

type CreateMeetingInput struct {
	Title           string
	Description     string
	GroupID         *int
	DateTime        time.Time
	DurationMinutes int
	QuorumThreshold int
	Recurrence      string
	LocationName    string
	LocationAddress string
	LocationPlaceID string
	LocationLat     *decimal.Decimal
	LocationLng     *decimal.Decimal
}

type UpdateMeetingInput struct {
	Title           *string
	Description     *string
	DateTime        *time.Time
	DurationMinutes *int
	QuorumThreshold *int
	Recurrence      *string
	LocationName    *string
	LocationAddress *string
	LocationPlaceID *string
	LocationLat     *decimal.Decimal
	LocationLng     *decimal.Decimal
	Status          *string
}

const meetingColumns = `id, title, description, organizer_id, group_id, date_time,
	duration_minutes, quorum_threshold, recurrence, status, location_name,
	location_address, location_place_id, location_lat, location_lng,
	parent_meeting_id, reminder_sent_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMeeting(row rowScanner) (models.Meeting, error) {
	var m models.Meeting
	err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.OrganizerID, &m.GroupID, &m.DateTime,
		&m.DurationMinutes, &m.QuorumThreshold, &m.Recurrence, &m.Status, &m.LocationName,
		&m.LocationAddress, &m.LocationPlaceID, &m.LocationLat, &m.LocationLng,
		&m.ParentMeetingID, &m.ReminderSentAt, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func fetchMeeting(ctx context.Context, db *sql.DB, meetingID int) (models.Meeting, error) {
	row := db.QueryRowContext(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, meetingID)
	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return m, NotFound("meeting not found")
	}
	if err != nil {
		return m, utils.ErrorHandler(err, "failed to fetch meeting")
	}
	return m, nil
}

func loadMeetingDetail(ctx context.Context, db *sql.DB, m models.Meeting) (models.MeetingDetail, error) {
	detail := models.MeetingDetail{Meeting: m}

	err := db.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, m.OrganizerID).
		Scan(&detail.Organizer.ID, &detail.Organizer.Name, &detail.Organizer.Email)
	if err != nil && err != sql.ErrNoRows {
		return detail, utils.ErrorHandler(err, "failed to fetch organizer")
	}

	rows, err := db.QueryContext(ctx, `
		SELECT r.id, r.meeting_id, r.user_id, r.status, r.created_at, r.updated_at, u.id, u.name
		FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.meeting_id = ?
		ORDER BY r.created_at ASC, r.id ASC
	`, m.ID)
	if err != nil {
		return detail, utils.ErrorHandler(err, "failed to fetch rsvps")
	}
	defer rows.Close()

	detail.Rsvps = make([]models.RsvpWithUser, 0)
	for rows.Next() {
		var r models.RsvpWithUser
		if err := rows.Scan(&r.ID, &r.MeetingID, &r.UserID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.User.ID, &r.User.Name); err != nil {
			return detail, utils.ErrorHandler(err, "failed to scan rsvp")
		}
		detail.Rsvps = append(detail.Rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return detail, utils.ErrorHandler(err, "failed to iterate rsvps")
	}

	return detail, nil
}

// List returns meetings where the user is organizer or holds an RSVP, soonest first.
func (s *MeetingService) List(ctx context.Context, userID int) ([]models.MeetingDetail, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+meetingColumns+` FROM meetings
		WHERE organizer_id = ?
		   OR id IN (SELECT meeting_id FROM rsvps WHERE user_id = ?)
		ORDER BY date_time ASC
	`, userID, userID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to list meetings")
	}
	defer rows.Close()

	meetings := make([]models.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan meeting")
		}
		meetings = append(meetings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to iterate meetings")
	}

	details := make([]models.MeetingDetail, 0, len(meetings))
	for _, m := range meetings {
		d, err := loadMeetingDetail(ctx, s.DB, m)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *MeetingService) Get(ctx context.Context, meetingID int) (models.MeetingDetail, error) {
	m, err := fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		return models.MeetingDetail{}, err
	}
	return loadMeetingDetail(ctx, s.DB, m)
}

func (s *MeetingService) Create(ctx context.Context, organizerID int, input CreateMeetingInput) (models.MeetingDetail, error) {
	var organizer models.UserSummary
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, organizerID).
		Scan(&organizer.ID, &organizer.Name, &organizer.Email)
	if err == sql.ErrNoRows {
		return models.MeetingDetail{}, NotFound("organizer not found")
	}
	if err != nil {
		return models.MeetingDetail{}, utils.ErrorHandler(err, "failed to fetch organizer")
	}

	if input.DurationMinutes == 0 {
		input.DurationMinutes = 60
	}
	if input.QuorumThreshold == 0 {
		input.QuorumThreshold = 3
	}
	if input.Recurrence == "" {
		input.Recurrence = models.RecurrenceNone
	}
	if !models.ValidRecurrence(input.Recurrence) {
		return models.MeetingDetail{}, Invalid("invalid recurrence rule")
	}
	if input.QuorumThreshold < 1 {
		return models.MeetingDetail{}, Invalid("quorum threshold must be at least 1")
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO meetings (title, description, organizer_id, group_id, date_time,
			duration_minutes, quorum_threshold, recurrence, status, location_name,
			location_address, location_place_id, location_lat, location_lng)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		input.Title, nullString(input.Description), organizerID, nullInt(input.GroupID),
		input.DateTime.UTC().Format(models.DateTimeLayout), input.DurationMinutes,
		input.QuorumThreshold, input.Recurrence, models.MeetingStatusDraft,
		nullString(input.LocationName), nullString(input.LocationAddress),
		nullString(input.LocationPlaceID), nullDecimal(input.LocationLat), nullDecimal(input.LocationLng),
	)
	if err != nil {
		return models.MeetingDetail{}, utils.ErrorHandler(err, "failed to create meeting")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.MeetingDetail{}, utils.ErrorHandler(err, "failed to get meeting id")
	}

	go func(to, title string, at time.Time) {
		if err := s.Mailer.SendMeetingCreated(to, title, at); err != nil {
			utils.Logger.Errorf("failed to send meeting created email to %s: %v", to, err)
		}
	}(organizer.Email, input.Title, input.DateTime)

	m, err := fetchMeeting(ctx, s.DB, int(id))
	if err != nil {
		return models.MeetingDetail{}, err
	}
	return loadMeetingDetail(ctx, s.DB, m)
}

func (s *MeetingService) Update(ctx context.Context, meetingID, userID int, input UpdateMeetingInput) (models.MeetingDetail, error) {
	m, err := fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		return models.MeetingDetail{}, err
	}
	if m.OrganizerID != userID {
		return models.MeetingDetail{}, Forbidden("only the organizer can update this meeting")
	}

	// Status transitions are owned by the quorum engine; the update endpoint
	// only accepts an explicit cancellation.
	if input.Status != nil && *input.Status != models.MeetingStatusCancelled {
		return models.MeetingDetail{}, Invalid("status can only be set to CANCELLED")
	}
	if input.Recurrence != nil && !models.ValidRecurrence(*input.Recurrence) {
		return models.MeetingDetail{}, Invalid("invalid recurrence rule")
	}
	if input.QuorumThreshold != nil && *input.QuorumThreshold < 1 {
		return models.MeetingDetail{}, Invalid("quorum threshold must be at least 1")
	}

	fields := []string{}
	args := []interface{}{}

	if input.Title != nil {
		fields = append(fields, "title = ?")
		args = append(args, *input.Title)
	}
	if input.Description != nil {
		fields = append(fields, "description = ?")
		args = append(args, *input.Description)
	}
	if input.DateTime != nil {
		fields = append(fields, "date_time = ?")
		args = append(args, input.DateTime.UTC().Format(models.DateTimeLayout))
	}
	if input.DurationMinutes != nil {
		fields = append(fields, "duration_minutes = ?")
		args = append(args, *input.DurationMinutes)
	}
	if input.QuorumThreshold != nil {
		fields = append(fields, "quorum_threshold = ?")
		args = append(args, *input.QuorumThreshold)
	}
	if input.Recurrence != nil {
		fields = append(fields, "recurrence = ?")
		args = append(args, *input.Recurrence)
	}
	if input.LocationName != nil {
		fields = append(fields, "location_name = ?")
		args = append(args, *input.LocationName)
	}
	if input.LocationAddress != nil {
		fields = append(fields, "location_address = ?")
		args = append(args, *input.LocationAddress)
	}
	if input.LocationPlaceID != nil {
		fields = append(fields, "location_place_id = ?")
		args = append(args, *input.LocationPlaceID)
	}
	if input.LocationLat != nil {
		fields = append(fields, "location_lat = ?")
		args = append(args, input.LocationLat.String())
	}
	if input.LocationLng != nil {
		fields = append(fields, "location_lng = ?")
		args = append(args, input.LocationLng.String())
	}
	if input.Status != nil {
		fields = append(fields, "status = ?")
		args = append(args, *input.Status)
	}

	if len(fields) == 0 {
		return models.MeetingDetail{}, Invalid("no updates provided")
	}

	args = append(args, meetingID)
	query := fmt.Sprintf("UPDATE meetings SET %s WHERE id = ?", strings.Join(fields, ", "))
	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return models.MeetingDetail{}, utils.ErrorHandler(err, "failed to update meeting")
	}

	m, err = fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		return models.MeetingDetail{}, err
	}
	return loadMeetingDetail(ctx, s.DB, m)
}

func (s *MeetingService) Delete(ctx context.Context, meetingID, userID int) error {
	m, err := fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		return err
	}
	if m.OrganizerID != userID {
		return Forbidden("only the organizer can delete this meeting")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.email FROM rsvps r JOIN users u ON u.id = r.user_id WHERE r.meeting_id = ?
	`, meetingID)
	if err != nil {
		return utils.ErrorHandler(err, "failed to fetch attendees")
	}
	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			rows.Close()
			return utils.ErrorHandler(err, "failed to scan attendee")
		}
		emails = append(emails, email)
	}
	rows.Close()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return utils.ErrorHandler(err, "failed to start transaction")
	}

	for _, stmt := range []string{
		`DELETE FROM rsvps WHERE meeting_id = ?`,
		`DELETE FROM location_votes WHERE meeting_id = ?`,
		`DELETE FROM invites WHERE meeting_id = ?`,
		`UPDATE meetings SET parent_meeting_id = NULL WHERE parent_meeting_id = ?`,
		`DELETE FROM meetings WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, meetingID); err != nil {
			tx.Rollback()
			return utils.ErrorHandler(err, "failed to delete meeting")
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return utils.ErrorHandler(err, "failed to commit transaction")
	}

	for _, email := range emails {
		go func(to string) {
			if err := s.Mailer.SendMeetingCancelled(to, m.Title); err != nil {
				utils.Logger.Errorf("failed to send cancellation email to %s: %v", to, err)
			}
		}(email)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullDecimal(d *decimal.Decimal) interface{} {
	if d == nil {
		return nil
	}
	return d.String()
}
