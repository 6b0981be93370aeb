// Package notify delivers out-of-band messages to users, currently just
// the signup confirmation code. Delivery is best-effort: a failed send is
// logged and never rolls back committed state.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

type Message struct {
	Subject   string
	Body      string
	Recipient string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. It is
// the development default and what the tests inject.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info("outbound email",
		"to", msg.Recipient,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

// SMTPSender delivers through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port
	From string
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", msg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n\r\n", msg.Subject)
	b.WriteString(msg.Body)

	if err := smtp.SendMail(s.Addr, nil, s.From, []string{msg.Recipient}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.Recipient, err)
	}
	return nil
}
