package messaging

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

// LogSender only writes events to the log. Used when no broker is configured.
type LogSender struct {
	Logger *logrus.Logger
}

func (s LogSender) Send(_ context.Context, event entity.UserEvent) error {
	s.Logger.WithFields(logrus.Fields{
		"operation": event.Operation,
		"email":     event.Email,
	}).Info("user event")
	return nil
}
