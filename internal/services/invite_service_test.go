package services

import (
	"net/http"
	"testing"
	"time"

	"rndvx/internal/models"

	"github.com/matryer/is"
)

func intPtr(i int) *int { return &i }

func TestCreateInviteGeneratesToken(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	mailer := &fakeMailer{}
	svc := &InviteService{DB: db, Mailer: mailer}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)
	is.True(invite.Token != "")
	is.Equal(invite.Status, models.InviteStatusPending)
	is.True(invite.Group != nil)
	is.Equal(invite.Group.Name, "Hiking Club")
	is.True(!invite.InviteeID.Valid) // bob has no account yet

	waitFor(t, func() bool { return mailer.count("invite") == 1 })
}

func TestCreateInviteWithoutExpiryNeverExpires(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)
	is.True(!invite.ExpiresAt.Valid) // no expiry unless the sender sets one

	responded, err := svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)
	is.Equal(responded.Status, models.InviteStatusAccepted)
}

func TestCreateInviteResolvesExistingInvitee(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)
	is.True(invite.InviteeID.Valid)
	is.Equal(int(invite.InviteeID.Int64), invitee)
}

func TestCreateGroupInviteRequiresMembership(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	owner := seedUser(t, db, "ana@example.com", "Ana")
	outsider := seedUser(t, db, "sam@example.com", "Sam")
	groupID := seedGroup(t, db, owner, "Hiking Club")

	_, err := svc.Create(testCtx, outsider, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.Equal(domainStatus(t, err), http.StatusForbidden)
}

func TestCreateMeetingInviteRequiresOrganizer(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	organizer := seedUser(t, db, "ana@example.com", "Ana")
	other := seedUser(t, db, "sam@example.com", "Sam")
	meetingID := seedMeeting(t, db, organizer, 3, models.MeetingStatusDraft)

	_, err := svc.Create(testCtx, other, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		MeetingID:    intPtr(meetingID),
	})
	is.Equal(domainStatus(t, err), http.StatusForbidden)
}

func TestRespondAcceptsOnce(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)

	updated, err := svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)
	is.Equal(updated.Status, models.InviteStatusAccepted)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusDeclined)
	is.Equal(domainStatus(t, err), http.StatusConflict)
}

func TestRespondExpiredInviteIsGone(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	past := time.Now().UTC().Add(-time.Hour)
	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
		ExpiresAt:    &past,
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.Equal(domainStatus(t, err), http.StatusGone)

	// The stored row keeps its PENDING status; there is no expiry sweep.
	var status string
	err = db.QueryRow(`SELECT status FROM invites WHERE id = ?`, invite.ID).Scan(&status)
	is.NoErr(err)
	is.Equal(status, models.InviteStatusPending)
}

func TestRespondRejectsWrongUser(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	stranger := seedUser(t, db, "sam@example.com", "Sam")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, stranger, models.InviteStatusAccepted)
	is.Equal(domainStatus(t, err), http.StatusForbidden)
}

func TestRespondSelfHealsInviteeID(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	// The invitee registers after the invite was sent.
	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)
	is.True(!invite.InviteeID.Valid)

	invitee := seedUser(t, db, "bob@example.com", "Bob")

	updated, err := svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusDeclined)
	is.NoErr(err)
	is.True(updated.InviteeID.Valid)
	is.Equal(int(updated.InviteeID.Int64), invitee)
}

func TestRespondAcceptedGroupInviteAddsMember(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)

	var role string
	err = db.QueryRow(`SELECT role FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, invitee).Scan(&role)
	is.NoErr(err)
	is.Equal(role, models.RoleMember)
}

func TestRespondAcceptedGroupInviteKeepsExistingRole(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	_, err := db.Exec(`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, invitee, models.RoleAdmin)
	is.NoErr(err)

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)

	var role string
	err = db.QueryRow(`SELECT role FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, invitee).Scan(&role)
	is.NoErr(err)
	is.Equal(role, models.RoleAdmin)
}

func TestRespondAcceptedMeetingInviteWritesYesRsvp(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	organizer := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	meetingID := seedMeeting(t, db, organizer, 3, models.MeetingStatusDraft)

	invite, err := svc.Create(testCtx, organizer, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		MeetingID:    intPtr(meetingID),
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)

	var status string
	var count int
	err = db.QueryRow(`SELECT status FROM rsvps WHERE meeting_id = ? AND user_id = ?`,
		meetingID, invitee).Scan(&status)
	is.NoErr(err)
	is.Equal(status, models.RsvpStatusYes)
	err = db.QueryRow(`SELECT COUNT(*) FROM rsvps WHERE meeting_id = ? AND user_id = ?`,
		meetingID, invitee).Scan(&count)
	is.NoErr(err)
	is.Equal(count, 1)
}

func TestRespondAcceptedMeetingInviteDoesNotRecheckQuorum(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	organizer := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	meetingID := seedMeeting(t, db, organizer, 1, models.MeetingStatusDraft)

	invite, err := svc.Create(testCtx, organizer, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		MeetingID:    intPtr(meetingID),
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)

	// The YES row alone does not confirm the meeting; only the RSVP
	// endpoints run the quorum check.
	is.Equal(meetingStatus(t, db, meetingID), models.MeetingStatusDraft)
}

func TestRespondUpgradesExistingRsvpToYes(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	organizer := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	meetingID := seedMeeting(t, db, organizer, 3, models.MeetingStatusDraft)

	_, err := db.Exec(`INSERT INTO rsvps (meeting_id, user_id, status) VALUES (?, ?, ?)`,
		meetingID, invitee, models.RsvpStatusNo)
	is.NoErr(err)

	invite, err := svc.Create(testCtx, organizer, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		MeetingID:    intPtr(meetingID),
	})
	is.NoErr(err)

	_, err = svc.Respond(testCtx, invite.Token, invitee, models.InviteStatusAccepted)
	is.NoErr(err)

	var status string
	err = db.QueryRow(`SELECT status FROM rsvps WHERE meeting_id = ? AND user_id = ?`,
		meetingID, invitee).Scan(&status)
	is.NoErr(err)
	is.Equal(status, models.RsvpStatusYes)
}

func TestGetByTokenUnknownIsNotFound(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	_, err := svc.GetByToken(testCtx, "no-such-token")
	is.Equal(domainStatus(t, err), http.StatusNotFound)
}

func TestListInvitesCoversSenderAndInvitee(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	_, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)

	senderSide, err := svc.List(testCtx, sender)
	is.NoErr(err)
	is.Equal(len(senderSide), 1)

	inviteeSide, err := svc.List(testCtx, invitee)
	is.NoErr(err)
	is.Equal(len(inviteeSide), 1)
	is.Equal(inviteeSide[0].Sender.Name, "Ana")
}

func TestDeleteInviteIsSenderOnly(t *testing.T) {
	is := is.New(t)
	db := openTestDB(t)
	svc := &InviteService{DB: db, Mailer: &fakeMailer{}}

	sender := seedUser(t, db, "ana@example.com", "Ana")
	invitee := seedUser(t, db, "bob@example.com", "Bob")
	groupID := seedGroup(t, db, sender, "Hiking Club")

	invite, err := svc.Create(testCtx, sender, CreateInviteInput{
		InviteeEmail: "bob@example.com",
		GroupID:      intPtr(groupID),
	})
	is.NoErr(err)

	err = svc.Delete(testCtx, invite.ID, invitee)
	is.Equal(domainStatus(t, err), http.StatusForbidden)

	err = svc.Delete(testCtx, invite.ID, sender)
	is.NoErr(err)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM invites WHERE id = ?`, invite.ID).Scan(&count)
	is.NoErr(err)
	is.Equal(count, 0)

	err = svc.Delete(testCtx, invite.ID, sender)
	is.Equal(domainStatus(t, err), http.StatusNotFound)
}
