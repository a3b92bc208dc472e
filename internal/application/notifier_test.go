package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

type sentMail struct {
	to, subject, text, html string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, text, html string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, text: text, html: html})
	return nil
}

func newTestNotifier(m Mailer) *Notifier {
	n := NewNotifier(m, "Acme", quietLogger())
	n.now = func() time.Time { return fixedNow }
	return n
}

func TestNotifier_Handle(t *testing.T) {
	tests := []struct {
		name    string
		event   entity.UserEvent
		subject string
	}{
		{
			name:    "created",
			event:   entity.UserEvent{Operation: entity.OperationCreated, Email: "alice@example.com"},
			subject: "Welcome to Acme",
		},
		{
			name:    "deleted",
			event:   entity.UserEvent{Operation: entity.OperationDeleted, Email: "alice@example.com"},
			subject: "Your Acme account was deleted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &fakeMailer{}
			require.NoError(t, newTestNotifier(m).Handle(context.Background(), tt.event))

			require.Len(t, m.sent, 1)
			assert.Equal(t, "alice@example.com", m.sent[0].to)
			assert.Equal(t, tt.subject, m.sent[0].subject)
			assert.Contains(t, m.sent[0].text, "01 March 2024, 10:30")
			assert.Contains(t, m.sent[0].html, "alice@example.com")
		})
	}
}

func TestNotifier_Handle_Failures(t *testing.T) {
	t.Run("unknown operation", func(t *testing.T) {
		m := &fakeMailer{}
		err := newTestNotifier(m).Handle(context.Background(), entity.UserEvent{Operation: "UPDATED", Email: "a@example.com"})
		require.Error(t, err)
		assert.Empty(t, m.sent)
	})

	t.Run("mailer error is returned", func(t *testing.T) {
		sendErr := errors.New("mailgun: 401")
		m := &fakeMailer{err: sendErr}
		err := newTestNotifier(m).Handle(context.Background(), entity.UserEvent{Operation: entity.OperationCreated, Email: "a@example.com"})
		assert.ErrorIs(t, err, sendErr)
	})
}
