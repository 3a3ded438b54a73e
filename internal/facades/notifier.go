package facades

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPNotifier emails freshly issued session tokens to users.
type SMTPNotifier struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTPNotifier creates a new notifier for the given SMTP server.
func NewSMTPNotifier(host string, port int, username, password string) *SMTPNotifier {
	return &SMTPNotifier{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Send delivers the login token to the recipient. Callers treat failures
// as best-effort: a mail outage must not block login.
func (n *SMTPNotifier) Send(ctx context.Context, recipient, token string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)
	auth := smtp.PlainAuth("", n.username, n.password, n.host)
	msg := buildTokenMessage(n.username, recipient, token)
	return smtp.SendMail(addr, auth, n.username, []string{recipient}, msg)
}

func buildTokenMessage(from, to, token string) []byte {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Your Login Token\r\n\r\n"+
			"Hello,\r\n\r\nYour login token:\r\n%s\r\n\r\nDo not share this token.\r\n\r\n"+
			"Secure Voice Intelligence System\r\n",
		from, to, token,
	)
	return []byte(body)
}
