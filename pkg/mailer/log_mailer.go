package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogMailer logs outgoing mail instead of sending it. Used when MAIL_SEND_ENABLED=false.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m LogMailer) Send(_ context.Context, to, subject, text, _ string) error {
	m.Logger.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("mail not sent (MAIL_SEND_ENABLED=false)")
	m.Logger.Debug(text)
	return nil
}
