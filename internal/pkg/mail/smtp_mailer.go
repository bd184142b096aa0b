package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/RUDRA212003/Career-mock/internal/pkg/constants"
	"github.com/RUDRA212003/Career-mock/internal/pkg/env"
)

// SMTPMailer sends emails via SMTP
func SendMail(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// SendActivationMail sends the account activation link to a new user.
func SendActivationMail(to, username, activationToken string) error {
	publicDomain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:3000")
	link := fmt.Sprintf("%s%s?token=%s", publicDomain, constants.ActivateRoute, activationToken)

	subject := "Activate your account"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Thanks for signing up. Click the link below to activate your account:</p>
<p><a href="%s">%s</a></p>
<p>If you did not create this account you can ignore this email.</p>`, username, link, link)

	return SendMail(to, subject, body)
}

// SendPasswordResetMail sends the password reset link. The link expires
// server-side, the mail just carries it.
func SendPasswordResetMail(to, username, resetToken string) error {
	publicDomain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:3000")
	link := fmt.Sprintf("%s%s?token=%s", publicDomain, constants.ResetPasswordRoute, resetToken)

	subject := "Reset your password"
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Someone requested a password reset for your account. Use the link below to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>The link expires in two hours. If you did not request this you can ignore this email.</p>`, username, link, link)

	return SendMail(to, subject, body)
}

// SendInterviewInvite sends a candidate the public link to join an interview.
func SendInterviewInvite(to, candidateName, jobPosition, interviewSlug string) error {
	publicDomain := env.GetEnv("PUBLIC_DOMAIN", "http://localhost:3000")
	link := fmt.Sprintf("%s%s/%s", publicDomain, constants.InterviewRoute, interviewSlug)

	subject := fmt.Sprintf("Interview invitation: %s", jobPosition)
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>You have been invited to an AI mock interview for the <strong>%s</strong> role.</p>
<p>Join here: <a href="%s">%s</a></p>`, candidateName, jobPosition, link, link)

	return SendMail(to, subject, body)
}
