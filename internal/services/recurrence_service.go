package services

import (
	"context"
	"database/sql"
	"time"

	"rndvx/internal/models"
	"rndvx/pkg/utils"
)

type RecurrenceService struct {
	DB *sql.DB
}

func nextDate(current time.Time, rule string) (time.Time, error) {
	switch rule {
	case models.RecurrenceWeekly:
		return current.AddDate(0, 0, 7), nil
	case models.RecurrenceBiweekly:
		return current.AddDate(0, 0, 14), nil
	case models.RecurrenceMonthly:
		return current.AddDate(0, 1, 0), nil
	}
	return time.Time{}, Invalid("meeting has no recurrence rule")
}

// GenerateInstances appends count dated copies of the parent meeting,
// continuing from the latest existing instance, and returns all instances.
func (s *RecurrenceService) GenerateInstances(ctx context.Context, parentMeetingID, requesterID, count int) ([]models.MeetingDetail, error) {
	if count < 1 || count > 52 {
		return nil, Invalid("count must be between 1 and 52")
	}

	parent, err := fetchMeeting(ctx, s.DB, parentMeetingID)
	if err != nil {
		return nil, err
	}
	if parent.OrganizerID != requesterID {
		return nil, Forbidden("only the organizer can generate instances")
	}
	if parent.Recurrence == models.RecurrenceNone {
		return nil, Invalid("meeting has no recurrence rule")
	}

	anchor := parent.DateTime
	var latest string
	err = s.DB.QueryRowContext(ctx, `
		SELECT date_time FROM meetings WHERE parent_meeting_id = ? ORDER BY date_time DESC LIMIT 1
	`, parentMeetingID).Scan(&latest)
	switch {
	case err == nil:
		anchor = latest
	case err != sql.ErrNoRows:
		return nil, utils.ErrorHandler(err, "failed to find latest instance")
	}

	baseDate, err := time.Parse(models.DateTimeLayout, anchor)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to parse meeting date")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to start transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meetings (title, description, organizer_id, group_id, date_time,
			duration_minutes, quorum_threshold, recurrence, status, location_name,
			location_address, location_place_id, location_lat, location_lng, parent_meeting_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, utils.ErrorHandler(err, "failed to prepare insert statement")
	}
	defer stmt.Close()

	for i := 0; i < count; i++ {
		baseDate, err = nextDate(baseDate, parent.Recurrence)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		_, err = stmt.ExecContext(ctx,
			parent.Title, parent.Description, parent.OrganizerID, parent.GroupID,
			baseDate.UTC().Format(models.DateTimeLayout), parent.DurationMinutes,
			parent.QuorumThreshold, parent.Recurrence, models.MeetingStatusDraft,
			parent.LocationName, parent.LocationAddress, parent.LocationPlaceID,
			parent.LocationLat, parent.LocationLng, parentMeetingID,
		)
		if err != nil {
			tx.Rollback()
			return nil, utils.ErrorHandler(err, "failed to insert instance")
		}
	}

	if err := tx.Commit(); err != nil {
		tx.Rollback()
		return nil, utils.ErrorHandler(err, "failed to commit transaction")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+meetingColumns+` FROM meetings WHERE parent_meeting_id = ? ORDER BY date_time ASC
	`, parentMeetingID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to list instances")
	}
	defer rows.Close()

	instances := make([]models.Meeting, 0)
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan instance")
		}
		instances = append(instances, m)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to iterate instances")
	}

	details := make([]models.MeetingDetail, 0, len(instances))
	for _, m := range instances {
		d, err := loadMeetingDetail(ctx, s.DB, m)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}
