package utils

import (
	"fmt"
	"time"
)

func SendInviteEmail(to, senderName, target, inviteURL string, expiresAt *time.Time) error {
	subject := fmt.Sprintf("🗓️ %s invited you on Rendezvous!", senderName)

	expiryLine := ""
	if expiresAt != nil {
		expiryLine = fmt.Sprintf(`<p class="expiry">This invitation link expires on <b>%s</b>.</p>`,
			expiresAt.Format("Monday, 02 Jan 2006 15:04 MST"))
	}

	body := fmt.Sprintf(`
	<!DOCTYPE html>
	<html lang="en">
	<head>
	<meta charset="UTF-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1.0" />
	<title>Invitation</title>
	<style>
		body {
			font-family: 'Segoe UI', Roboto, Arial, sans-serif;
			background-color: #f5f7f6;
			margin: 0;
			padding: 0;
			color: #333333;
		}
		.container {
			max-width: 480px;
			margin: 25px auto;
			background: #ffffff;
			border-radius: 12px;
			box-shadow: 0 4px 16px rgba(0, 0, 0, 0.08);
			overflow: hidden;
			border-top: 5px solid #1c3d5a;
		}
		.header {
			background-color: #1c3d5a;
			color: #ffffff;
			text-align: center;
			padding: 18px 12px;
		}
		.header h1 {
			margin: 0;
			font-size: 18px;
			font-weight: 600;
		}
		.content {
			padding: 20px 18px;
		}
		.message {
			font-size: 13px;
			line-height: 1.5;
			color: #444444;
			margin-bottom: 14px;
		}
		.target-box {
			background: #f6fafd;
			border: 1px solid #d8e6f1;
			border-radius: 8px;
			padding: 12px 14px;
			margin: 16px 0;
		}
		.target-box h3 {
			margin: 0;
			color: #1c3d5a;
			font-size: 15px;
		}
		.btn {
			display: inline-block;
			background-color: #1c3d5a;
			color: #ffffff !important;
			text-decoration: none;
			font-size: 14px;
			font-weight: 600;
			padding: 10px 22px;
			border-radius: 6px;
			margin: 18px 0;
			text-align: center;
		}
		.expiry {
			margin-top: 16px;
			font-size: 12px;
			color: #888888;
		}
		.footer {
			background: #f0f4f6;
			text-align: center;
			padding: 14px;
			font-size: 12px;
			color: #777777;
			border-top: 1px solid #e5e5e5;
		}
	</style>
	</head>

	<body>
		<div class="container">
			<div class="header">
				<h1>You're Invited!</h1>
			</div>

			<div class="content">
				<p class="message">
					<b>%s</b> has invited you on <b>Rendezvous</b> — the easy way to plan
					meetings that actually happen.
				</p>

				<div class="target-box">
					<h3>%s</h3>
				</div>

				<div style="text-align: center;">
					<a href="%s" class="btn">Respond to Invitation</a>
				</div>

				%s
			</div>

			<div class="footer">
				If you weren't expecting this invitation you can safely ignore this email.
			</div>
		</div>
	</body>
	</html>
	`, senderName, target, inviteURL, expiryLine)

	return SendEmail(to, subject, body)
}
