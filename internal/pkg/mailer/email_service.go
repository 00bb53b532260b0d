package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendBRDDocument(toEmail, userName, title, document string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendBRDDocument(toEmail, userName, title, document string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	if title == "" {
		title = "Your Business Requirements Document"
	}
	m.SetHeader("Subject", fmt.Sprintf("BRD ready: %s", title))

	greeting := "Hello"
	if userName != "" {
		greeting = fmt.Sprintf("Hello %s", html.EscapeString(userName))
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>%s,</h2>
			<p>Your discovery session is complete. The generated Business Requirements Document is below.</p>
			<pre style="background: #f6f8fa; padding: 16px; border-radius: 5px; white-space: pre-wrap;">%s</pre>
		</div>
	`, greeting, html.EscapeString(document))

	m.SetBody("text/html", body)
	m.AddAlternative("text/plain", fmt.Sprintf("%s,\n\nYour Business Requirements Document:\n\n%s\n", greeting, document))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send BRD to %s: %w", toEmail, err)
	}

	return nil
}
