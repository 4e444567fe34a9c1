package services

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

// EmailSender delivers the signup confirmation message. Delivery is
// fire-and-forget: callers run Send in a goroutine and only log failures.
type EmailSender interface {
	SendConfirmation(to, username, confirmURL string) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(server string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(server, port, username, password),
		from:   from,
	}
}

func (s *SMTPSender) SendConfirmation(to, username, confirmURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Confirm your email")
	m.SetBody("text/html", fmt.Sprintf(
		`<p>Hello %s,</p>
<p>Thank you for registering. Please confirm your email address by following the link below:</p>
<p><a href=%q>%s</a></p>
<p>If you did not sign up, ignore this message.</p>`,
		username, confirmURL, confirmURL))

	return s.dialer.DialAndSend(m)
}
