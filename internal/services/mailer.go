package services

import "time"

// Mailer is the outgoing notification transport. Delivery is best-effort:
// callers fire sends in goroutines and only log failures.
type Mailer interface {
	SendMeetingCreated(to, title string, dateTime time.Time) error
	SendMeetingConfirmed(to, title string, dateTime time.Time) error
	SendMeetingCancelled(to, title string) error
	SendMeetingReminder(to, title string, dateTime time.Time) error
	SendRsvpConfirmation(to, title, status string) error
	SendInvite(to, senderName, target, inviteURL string, expiresAt *time.Time) error
}
