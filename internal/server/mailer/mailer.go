// Package mailer delivers magic sign-in codes by email.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/clipboardhistoryio/companion/internal/logging"
	"github.com/mailgun/mailgun-go/v3"
)

type Mailer interface {
	SendMagicCode(ctx context.Context, email, code string) error
}

const (
	magicCodeSubject = "Your Clipboard History IO sign-in code"
	sendTimeout      = 10 * time.Second
)

func magicCodeBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your sign-in code is %s\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
		code, int(ttl.Minutes()))
}

type mailgunClient interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// newMailgun is a seam for tests.
var newMailgun = func(domain, apiKey string) mailgunClient {
	return mailgun.NewMailgun(domain, apiKey)
}

type MailgunMailer struct {
	mg     mailgunClient
	sender string
	ttl    time.Duration
	logger logging.Logger
}

func NewMailgunMailer(domain, apiKey, sender string, ttl time.Duration, logger logging.Logger) *MailgunMailer {
	return &MailgunMailer{
		mg:     newMailgun(domain, apiKey),
		sender: sender,
		ttl:    ttl,
		logger: logger.With("module", "mailer"),
	}
}

func (m *MailgunMailer) SendMagicCode(ctx context.Context, email, code string) error {
	msg := m.mg.NewMessage(m.sender, magicCodeSubject, magicCodeBody(code, m.ttl), email)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, id, err := m.mg.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	m.logger.Debug(ctx, "magic code sent", "message_id", id)
	return nil
}

// LogMailer writes codes to the log instead of sending them. It is used when
// no Mailgun credentials are configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(logger logging.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) SendMagicCode(ctx context.Context, email, code string) error {
	m.logger.Warn(ctx, "mailgun not configured, logging magic code", "email", email, "code", code)
	return nil
}
