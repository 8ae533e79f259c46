package utils

import "time"

// SMTPMailer sends the transactional emails over the configured SMTP server.
// It satisfies services.Mailer.
type SMTPMailer struct{}

func (SMTPMailer) SendMeetingCreated(to, title string, dateTime time.Time) error {
	return SendMeetingCreatedEmail(to, title, dateTime)
}

func (SMTPMailer) SendMeetingConfirmed(to, title string, dateTime time.Time) error {
	return SendMeetingConfirmedEmail(to, title, dateTime)
}

func (SMTPMailer) SendMeetingCancelled(to, title string) error {
	return SendMeetingCancelledEmail(to, title)
}

func (SMTPMailer) SendMeetingReminder(to, title string, dateTime time.Time) error {
	return SendMeetingReminderEmail(to, title, dateTime)
}

func (SMTPMailer) SendRsvpConfirmation(to, title, status string) error {
	return SendRsvpConfirmationEmail(to, title, status)
}

func (SMTPMailer) SendInvite(to, senderName, target, inviteURL string, expiresAt *time.Time) error {
	return SendInviteEmail(to, senderName, target, inviteURL, expiresAt)
}
