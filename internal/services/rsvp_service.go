package services

import (
	"context"
	"database/sql"
	"time"

	"rndvx/internal/models"
	"rndvx/pkg/utils"
)

type RsvpService struct {
	DB     *sql.DB
	Mailer Mailer
}

// meetingAccess reports whether the user may touch RSVPs of the meeting:
// organizer, existing RSVP holder, or invitee of a meeting invite.
func meetingAccess(ctx context.Context, db *sql.DB, meeting models.Meeting, userID int) (bool, error) {
	if meeting.OrganizerID == userID {
		return true, nil
	}

	var exists bool
	err := db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM rsvps WHERE meeting_id = ? AND user_id = ?)
	`, meeting.ID, userID).Scan(&exists)
	if err != nil {
		return false, utils.ErrorHandler(err, "failed to check rsvp access")
	}
	if exists {
		return true, nil
	}

	err = db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM invites WHERE meeting_id = ? AND invitee_id = ?)
	`, meeting.ID, userID).Scan(&exists)
	if err != nil {
		return false, utils.ErrorHandler(err, "failed to check invite access")
	}
	return exists, nil
}

// Upsert writes the (meeting, user) RSVP row and reruns the quorum check.
func (s *RsvpService) Upsert(ctx context.Context, meetingID, userID int, status string) (models.Rsvp, error) {
	if !models.ValidRsvpStatus(status) {
		return models.Rsvp{}, Invalid("invalid rsvp status")
	}

	meeting, err := fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		return models.Rsvp{}, err
	}

	allowed, err := meetingAccess(ctx, s.DB, meeting, userID)
	if err != nil {
		return models.Rsvp{}, err
	}
	if !allowed {
		return models.Rsvp{}, Forbidden("access denied")
	}

	var existingID int
	err = s.DB.QueryRowContext(ctx, `
		SELECT id FROM rsvps WHERE meeting_id = ? AND user_id = ?
	`, meetingID, userID).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		res, err := s.DB.ExecContext(ctx, `
			INSERT INTO rsvps (meeting_id, user_id, status) VALUES (?, ?, ?)
		`, meetingID, userID, status)
		if err != nil {
			return models.Rsvp{}, utils.ErrorHandler(err, "failed to create rsvp")
		}
		id, err := res.LastInsertId()
		if err != nil {
			return models.Rsvp{}, utils.ErrorHandler(err, "failed to get rsvp id")
		}
		existingID = int(id)
	case err != nil:
		return models.Rsvp{}, utils.ErrorHandler(err, "failed to check existing rsvp")
	default:
		_, err = s.DB.ExecContext(ctx, `
			UPDATE rsvps SET status = ?, updated_at = ? WHERE id = ?
		`, status, time.Now().UTC().Format(models.DateTimeLayout), existingID)
		if err != nil {
			return models.Rsvp{}, utils.ErrorHandler(err, "failed to update rsvp")
		}
	}

	var email string
	if err := s.DB.QueryRowContext(ctx, `SELECT email FROM users WHERE id = ?`, userID).Scan(&email); err == nil {
		go func(to, title, st string) {
			if err := s.Mailer.SendRsvpConfirmation(to, title, st); err != nil {
				utils.Logger.Errorf("failed to send rsvp confirmation to %s: %v", to, err)
			}
		}(email, meeting.Title, status)
	}

	if err := s.checkQuorum(ctx, meetingID); err != nil {
		return models.Rsvp{}, err
	}

	var rsvp models.Rsvp
	err = s.DB.QueryRowContext(ctx, `
		SELECT id, meeting_id, user_id, status, created_at, updated_at FROM rsvps WHERE id = ?
	`, existingID).Scan(&rsvp.ID, &rsvp.MeetingID, &rsvp.UserID, &rsvp.Status, &rsvp.CreatedAt, &rsvp.UpdatedAt)
	if err != nil {
		return models.Rsvp{}, utils.ErrorHandler(err, "failed to fetch rsvp")
	}
	return rsvp, nil
}

// List returns all RSVPs for the meeting in creation order with user projections.
func (s *RsvpService) List(ctx context.Context, meetingID, requesterID int) ([]models.RsvpWithUser, error) {
	meeting, err := fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		return nil, err
	}

	allowed, err := meetingAccess(ctx, s.DB, meeting, requesterID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, Forbidden("access denied")
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT r.id, r.meeting_id, r.user_id, r.status, r.created_at, r.updated_at,
			u.id, u.name, u.email
		FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.meeting_id = ?
		ORDER BY r.created_at ASC, r.id ASC
	`, meetingID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to list rsvps")
	}
	defer rows.Close()

	rsvps := make([]models.RsvpWithUser, 0)
	for rows.Next() {
		var r models.RsvpWithUser
		if err := rows.Scan(&r.ID, &r.MeetingID, &r.UserID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.User.ID, &r.User.Name, &r.User.Email); err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan rsvp")
		}
		rsvps = append(rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to iterate rsvps")
	}
	return rsvps, nil
}

// Delete removes the (meeting, user) RSVP row and reruns the quorum check.
func (s *RsvpService) Delete(ctx context.Context, meetingID, userID int) error {
	var id int
	err := s.DB.QueryRowContext(ctx, `
		SELECT id FROM rsvps WHERE meeting_id = ? AND user_id = ?
	`, meetingID, userID).Scan(&id)
	if err == sql.ErrNoRows {
		return NotFound("rsvp not found")
	}
	if err != nil {
		return utils.ErrorHandler(err, "failed to check rsvp")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM rsvps WHERE id = ?`, id); err != nil {
		return utils.ErrorHandler(err, "failed to delete rsvp")
	}

	return s.checkQuorum(ctx, meetingID)
}

// checkQuorum keeps the meeting status consistent with the YES count.
// Cancellation is terminal; DRAFT only leaves when quorum is first reached.
func (s *RsvpService) checkQuorum(ctx context.Context, meetingID int) error {
	meeting, err := fetchMeeting(ctx, s.DB, meetingID)
	if err != nil {
		if _, ok := err.(*Error); ok {
			return nil
		}
		return err
	}
	if meeting.Status == models.MeetingStatusCancelled {
		return nil
	}

	var yesCount int
	err = s.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM rsvps WHERE meeting_id = ? AND status = ?
	`, meetingID, models.RsvpStatusYes).Scan(&yesCount)
	if err != nil {
		return utils.ErrorHandler(err, "failed to count yes rsvps")
	}

	shouldConfirm := yesCount >= meeting.QuorumThreshold

	if shouldConfirm && meeting.Status != models.MeetingStatusConfirmed {
		_, err = s.DB.ExecContext(ctx, `UPDATE meetings SET status = ? WHERE id = ?`,
			models.MeetingStatusConfirmed, meetingID)
		if err != nil {
			return utils.ErrorHandler(err, "failed to confirm meeting")
		}
		s.notifyConfirmed(ctx, meeting)
	} else if !shouldConfirm && meeting.Status == models.MeetingStatusConfirmed {
		_, err = s.DB.ExecContext(ctx, `UPDATE meetings SET status = ? WHERE id = ?`,
			models.MeetingStatusPendingQuorum, meetingID)
		if err != nil {
			return utils.ErrorHandler(err, "failed to demote meeting")
		}
	}
	return nil
}

func (s *RsvpService) notifyConfirmed(ctx context.Context, meeting models.Meeting) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT u.email FROM rsvps r
		JOIN users u ON u.id = r.user_id
		WHERE r.meeting_id = ? AND r.status = ?
	`, meeting.ID, models.RsvpStatusYes)
	if err != nil {
		utils.Logger.Errorf("failed to fetch confirmed attendees: %v", err)
		return
	}
	defer rows.Close()

	dateTime, err := time.Parse(models.DateTimeLayout, meeting.DateTime)
	if err != nil {
		dateTime = time.Now()
	}

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			utils.Logger.Errorf("failed to scan attendee: %v", err)
			continue
		}
		go func(to string) {
			if err := s.Mailer.SendMeetingConfirmed(to, meeting.Title, dateTime); err != nil {
				utils.Logger.Errorf("failed to send confirmation email to %s: %v", to, err)
			}
		}(email)
	}
}
