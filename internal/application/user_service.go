package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
	repo "github.com/oksasatya/go-user-service/internal/domain/repository"
	"github.com/oksasatya/go-user-service/pkg/validation"
)

// EventPublisher hands lifecycle events to the notification channel.
// Publish must not block on delivery; a returned error only means the event
// was not accepted.
type EventPublisher interface {
	Publish(event entity.UserEvent) error
}

// Service orchestrates the user lifecycle: validate, persist, map, notify.
type Service struct {
	Repo      repo.UserRepository
	Publisher EventPublisher
	Validator *validation.Validator
	Logger    *logrus.Logger
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithNowFunc overrides the clock used to stamp createdAt. Useful for testing.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo repo.UserRepository, publisher EventPublisher, logger *logrus.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Service{
		Repo:      repo,
		Publisher: publisher,
		Validator: validation.New(),
		Logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request, persists a new user and announces it.
func (s *Service) Create(ctx context.Context, req UserRequest) (*UserResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	u := ToEntity(req)
	// stores keep millisecond precision; stamp what will be read back
	u.CreatedAt = s.now().UTC().Truncate(time.Millisecond)

	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	resp := ToResponse(u)
	s.publish(entity.UserEvent{Operation: entity.OperationCreated, Email: u.Email})
	return &resp, nil
}

// Get returns ErrUserNotFound when id does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*UserResponse, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	resp := ToResponse(u)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.Repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ToResponses(users), nil
}

// Update replaces name, email and age of an existing user. ID and createdAt
// are kept, and no event is emitted.
func (s *Service) Update(ctx context.Context, id int64, req UserRequest) (*UserResponse, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	applyRequest(u, req)
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}

	resp := ToResponse(u)
	return &resp, nil
}

// Delete removes the user and announces it. It reports false when id does not exist.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	// the event needs the address, so read it before the row is gone
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("find user %d: %w", id, err)
	}
	if u == nil {
		return false, nil
	}

	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}

	s.publish(entity.UserEvent{Operation: entity.OperationDeleted, Email: u.Email})
	return true, nil
}

func (s *Service) validate(req UserRequest) error {
	if fields := s.Validator.Validate(req); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// publish never fails the caller; a rejected event is only logged.
func (s *Service) publish(event entity.UserEvent) {
	if s.Publisher == nil {
		return
	}
	if err := s.Publisher.Publish(event); err != nil {
		s.Logger.WithError(err).
			WithField("operation", event.Operation).
			Warn("user event not published")
	}
}
