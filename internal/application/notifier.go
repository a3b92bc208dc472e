package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
	mailtpl "github.com/oksasatya/go-user-service/pkg/mailer/templates"
)

// Mailer delivers one rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Notifier turns user events into emails for the affected address.
type Notifier struct {
	Mailer   Mailer
	SiteName string
	Logger   *logrus.Logger
	now      func() time.Time
}

func NewNotifier(mailer Mailer, siteName string, logger *logrus.Logger) *Notifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Notifier{
		Mailer:   mailer,
		SiteName: siteName,
		Logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Handle renders the template for the event's operation and sends it.
func (n *Notifier) Handle(ctx context.Context, event entity.UserEvent) error {
	var name string
	switch event.Operation {
	case entity.OperationCreated:
		name = mailtpl.UserCreated
	case entity.OperationDeleted:
		name = mailtpl.UserDeleted
	default:
		return fmt.Errorf("unknown operation %q", event.Operation)
	}

	subject, text, html, err := mailtpl.Render(name, mailtpl.EmailData{
		Email:    event.Email,
		SiteName: n.SiteName,
		TimeAt:   n.now(),
	})
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	if err := n.Mailer.Send(ctx, event.Email, subject, text, html); err != nil {
		return fmt.Errorf("send %s: %w", name, err)
	}
	n.Logger.WithFields(logrus.Fields{
		"operation": event.Operation,
		"template":  name,
	}).Info("notification sent")
	return nil
}
