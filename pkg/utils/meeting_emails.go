package utils

import (
	"fmt"
	"time"
)

func SendMeetingCreatedEmail(to, title string, dateTime time.Time) error {
	subject := fmt.Sprintf("Your meeting '%s' has been created", title)
	body := fmt.Sprintf(`
	<div style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; max-width: 480px; margin: 0 auto;">
		<h2 style="color: #1c3d5a;">Meeting created 🎉</h2>
		<p>Your meeting <b>%s</b> is scheduled for <b>%s</b>.</p>
		<p>Invite participants and it will confirm automatically once enough people say yes.</p>
	</div>`, title, dateTime.Format("Monday, 02 Jan 2006 15:04 MST"))
	return SendEmail(to, subject, body)
}

func SendMeetingConfirmedEmail(to, title string, dateTime time.Time) error {
	subject := fmt.Sprintf("✅ '%s' is confirmed!", title)
	body := fmt.Sprintf(`
	<div style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; max-width: 480px; margin: 0 auto;">
		<h2 style="color: #0a4d3c;">It's happening!</h2>
		<p>Enough attendees said yes — <b>%s</b> is confirmed for <b>%s</b>.</p>
		<p>See you there.</p>
	</div>`, title, dateTime.Format("Monday, 02 Jan 2006 15:04 MST"))
	return SendEmail(to, subject, body)
}

func SendMeetingCancelledEmail(to, title string) error {
	subject := fmt.Sprintf("'%s' has been cancelled", title)
	body := fmt.Sprintf(`
	<div style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; max-width: 480px; margin: 0 auto;">
		<h2 style="color: #8a1f1f;">Meeting cancelled</h2>
		<p>The meeting <b>%s</b> you had responded to was removed by its organizer.</p>
	</div>`, title)
	return SendEmail(to, subject, body)
}

func SendMeetingReminderEmail(to, title string, dateTime time.Time) error {
	subject := fmt.Sprintf("⏰ Reminder: '%s' is coming up", title)
	body := fmt.Sprintf(`
	<div style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; max-width: 480px; margin: 0 auto;">
		<h2 style="color: #1c3d5a;">Starting soon</h2>
		<p><b>%s</b> starts at <b>%s</b>.</p>
	</div>`, title, dateTime.Format("Monday, 02 Jan 2006 15:04 MST"))
	return SendEmail(to, subject, body)
}

func SendRsvpConfirmationEmail(to, title, status string) error {
	subject := fmt.Sprintf("Your RSVP for '%s'", title)
	body := fmt.Sprintf(`
	<div style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; max-width: 480px; margin: 0 auto;">
		<h2 style="color: #1c3d5a;">RSVP recorded</h2>
		<p>We saved your response <b>%s</b> for the meeting <b>%s</b>.</p>
		<p>You can change it any time before the meeting starts.</p>
	</div>`, status, title)
	return SendEmail(to, subject, body)
}
