package services

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"rndvx/internal/models"
	"rndvx/pkg/utils"

	"github.com/google/uuid"
)

type InviteService struct {
	DB     *sql.DB
	Mailer Mailer
}

type CreateInviteInput struct {
	InviteeEmail string
	GroupID      *int
	MeetingID    *int
	ExpiresAt    *time.Time
}

const inviteColumns = `id, token, sender_id, invitee_id, invitee_email, group_id,
	meeting_id, status, expires_at, created_at, updated_at`

func scanInvite(row rowScanner) (models.Invite, error) {
	var inv models.Invite
	err := row.Scan(&inv.ID, &inv.Token, &inv.SenderID, &inv.InviteeID, &inv.InviteeEmail,
		&inv.GroupID, &inv.MeetingID, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (s *InviteService) loadDetail(ctx context.Context, inv models.Invite) (models.InviteDetail, error) {
	detail := models.InviteDetail{Invite: inv}

	err := s.DB.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, inv.SenderID).
		Scan(&detail.Sender.ID, &detail.Sender.Name, &detail.Sender.Email)
	if err != nil && err != sql.ErrNoRows {
		return detail, utils.ErrorHandler(err, "failed to fetch invite sender")
	}

	if inv.GroupID.Valid {
		var g models.Group
		err := s.DB.QueryRowContext(ctx, `
			SELECT id, name, owner_id, created_at, updated_at FROM user_groups WHERE id = ?
		`, inv.GroupID.Int64).Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt)
		if err == nil {
			detail.Group = &g
		} else if err != sql.ErrNoRows {
			return detail, utils.ErrorHandler(err, "failed to fetch invite group")
		}
	}

	if inv.MeetingID.Valid {
		var m models.MeetingSummary
		err := s.DB.QueryRowContext(ctx, `
			SELECT id, title, date_time FROM meetings WHERE id = ?
		`, inv.MeetingID.Int64).Scan(&m.ID, &m.Title, &m.DateTime)
		if err == nil {
			detail.Meeting = &m
		} else if err != sql.ErrNoRows {
			return detail, utils.ErrorHandler(err, "failed to fetch invite meeting")
		}
	}

	return detail, nil
}

// List returns invites where the user is sender or invitee, newest first.
func (s *InviteService) List(ctx context.Context, userID int) ([]models.InviteDetail, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT `+inviteColumns+` FROM invites
		WHERE sender_id = ? OR invitee_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID, userID)
	if err != nil {
		return nil, utils.ErrorHandler(err, "failed to list invites")
	}
	defer rows.Close()

	invites := make([]models.Invite, 0)
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, utils.ErrorHandler(err, "failed to scan invite")
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, utils.ErrorHandler(err, "failed to iterate invites")
	}

	details := make([]models.InviteDetail, 0, len(invites))
	for _, inv := range invites {
		d, err := s.loadDetail(ctx, inv)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

func (s *InviteService) GetByToken(ctx context.Context, token string) (models.InviteDetail, error) {
	row := s.DB.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token)
	inv, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return models.InviteDetail{}, NotFound("invite not found")
	}
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to fetch invite")
	}
	return s.loadDetail(ctx, inv)
}

func (s *InviteService) Create(ctx context.Context, senderID int, input CreateInviteInput) (models.InviteDetail, error) {
	var inviteeID sql.NullInt64
	var id int
	err := s.DB.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, input.InviteeEmail).Scan(&id)
	switch {
	case err == nil:
		inviteeID = sql.NullInt64{Int64: int64(id), Valid: true}
	case err != sql.ErrNoRows:
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to resolve invitee")
	}

	target := "Rendezvous"
	if input.GroupID != nil {
		var groupName string
		var exists bool
		err := s.DB.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)
		`, *input.GroupID, senderID).Scan(&exists)
		if err != nil {
			return models.InviteDetail{}, utils.ErrorHandler(err, "failed to check group membership")
		}
		if !exists {
			return models.InviteDetail{}, Forbidden("you are not a member of this group")
		}
		if err := s.DB.QueryRowContext(ctx, `SELECT name FROM user_groups WHERE id = ?`, *input.GroupID).
			Scan(&groupName); err == nil {
			target = groupName
		}
	}

	if input.MeetingID != nil {
		meeting, err := fetchMeeting(ctx, s.DB, *input.MeetingID)
		if err != nil {
			return models.InviteDetail{}, err
		}
		if meeting.OrganizerID != senderID {
			return models.InviteDetail{}, Forbidden("only the organizer can invite to this meeting")
		}
		target = meeting.Title
	}

	token := uuid.NewString()

	var expiresAt sql.NullString
	if input.ExpiresAt != nil {
		expiresAt = sql.NullString{String: input.ExpiresAt.UTC().Format(models.DateTimeLayout), Valid: true}
	}

	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO invites (token, sender_id, invitee_id, invitee_email, group_id, meeting_id, status, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, token, senderID, inviteeID, input.InviteeEmail, nullInt(input.GroupID), nullInt(input.MeetingID),
		models.InviteStatusPending, expiresAt)
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to create invite")
	}

	inviteID, err := res.LastInsertId()
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to get invite id")
	}

	var senderName string
	if err := s.DB.QueryRowContext(ctx, `SELECT name FROM users WHERE id = ?`, senderID).
		Scan(&senderName); err != nil {
		senderName = "Someone"
	}

	inviteLink := fmt.Sprintf("%s/invites/%s", os.Getenv("CLIENT_URL"), token)
	go func(to, sender, tgt, link string, expiry *time.Time) {
		if err := s.Mailer.SendInvite(to, sender, tgt, link, expiry); err != nil {
			utils.Logger.Errorf("failed to send invite email to %s: %v", to, err)
		}
	}(input.InviteeEmail, senderName, target, inviteLink, input.ExpiresAt)

	row := s.DB.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, inviteID)
	inv, err := scanInvite(row)
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to fetch invite")
	}
	return s.loadDetail(ctx, inv)
}

// Respond moves a PENDING invite to ACCEPTED or DECLINED, exactly once, and
// runs the acceptance cascade (group membership, meeting RSVP).
func (s *InviteService) Respond(ctx context.Context, token string, userID int, status string) (models.InviteDetail, error) {
	if status != models.InviteStatusAccepted && status != models.InviteStatusDeclined {
		return models.InviteDetail{}, Invalid("status must be ACCEPTED or DECLINED")
	}

	row := s.DB.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE token = ?`, token)
	inv, err := scanInvite(row)
	if err == sql.ErrNoRows {
		return models.InviteDetail{}, NotFound("invite not found")
	}
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to fetch invite")
	}

	if inv.Status != models.InviteStatusPending {
		return models.InviteDetail{}, Conflict("invite has already been responded to")
	}

	if inv.ExpiresAt.Valid {
		expiry, err := time.Parse(models.DateTimeLayout, inv.ExpiresAt.String)
		if err == nil && expiry.Before(time.Now().UTC()) {
			return models.InviteDetail{}, Gone("invite has expired")
		}
	}

	var user models.UserSummary
	err = s.DB.QueryRowContext(ctx, `SELECT id, name, email FROM users WHERE id = ?`, userID).
		Scan(&user.ID, &user.Name, &user.Email)
	if err == sql.ErrNoRows {
		return models.InviteDetail{}, NotFound("user not found")
	}
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to fetch user")
	}

	if user.Email != inv.InviteeEmail && !(inv.InviteeID.Valid && int(inv.InviteeID.Int64) == userID) {
		return models.InviteDetail{}, Forbidden("this invite was not sent to you")
	}

	_, err = s.DB.ExecContext(ctx, `
		UPDATE invites SET status = ?, invitee_id = ?, updated_at = ? WHERE id = ?
	`, status, userID, time.Now().UTC().Format(models.DateTimeLayout), inv.ID)
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to update invite")
	}

	if status == models.InviteStatusAccepted && inv.GroupID.Valid {
		var exists bool
		err := s.DB.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?)
		`, inv.GroupID.Int64, userID).Scan(&exists)
		if err != nil {
			return models.InviteDetail{}, utils.ErrorHandler(err, "failed to check membership")
		}
		// An existing membership keeps its role; acceptance never downgrades.
		if !exists {
			_, err := s.DB.ExecContext(ctx, `
				INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)
			`, inv.GroupID.Int64, userID, models.RoleMember)
			if err != nil {
				return models.InviteDetail{}, utils.ErrorHandler(err, "failed to add group member")
			}
		}
	}

	if status == models.InviteStatusAccepted && inv.MeetingID.Valid {
		// The invite path writes the YES row directly and does not rerun the
		// quorum check; only the RSVP endpoints do.
		var rsvpID int
		err := s.DB.QueryRowContext(ctx, `
			SELECT id FROM rsvps WHERE meeting_id = ? AND user_id = ?
		`, inv.MeetingID.Int64, userID).Scan(&rsvpID)
		switch {
		case err == sql.ErrNoRows:
			_, err := s.DB.ExecContext(ctx, `
				INSERT INTO rsvps (meeting_id, user_id, status) VALUES (?, ?, ?)
			`, inv.MeetingID.Int64, userID, models.RsvpStatusYes)
			if err != nil {
				return models.InviteDetail{}, utils.ErrorHandler(err, "failed to create rsvp")
			}
		case err != nil:
			return models.InviteDetail{}, utils.ErrorHandler(err, "failed to check rsvp")
		default:
			_, err := s.DB.ExecContext(ctx, `
				UPDATE rsvps SET status = ?, updated_at = ? WHERE id = ?
			`, models.RsvpStatusYes, time.Now().UTC().Format(models.DateTimeLayout), rsvpID)
			if err != nil {
				return models.InviteDetail{}, utils.ErrorHandler(err, "failed to update rsvp")
			}
		}
	}

	row = s.DB.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, inv.ID)
	updated, err := scanInvite(row)
	if err != nil {
		return models.InviteDetail{}, utils.ErrorHandler(err, "failed to fetch invite")
	}
	return s.loadDetail(ctx, updated)
}

func (s *InviteService) Delete(ctx context.Context, inviteID, userID int) error {
	var senderID int
	err := s.DB.QueryRowContext(ctx, `SELECT sender_id FROM invites WHERE id = ?`, inviteID).Scan(&senderID)
	if err == sql.ErrNoRows {
		return NotFound("invite not found")
	}
	if err != nil {
		return utils.ErrorHandler(err, "failed to fetch invite")
	}
	if senderID != userID {
		return Forbidden("only the sender can delete this invite")
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM invites WHERE id = ?`, inviteID); err != nil {
		return utils.ErrorHandler(err, "failed to delete invite")
	}
	return nil
}
