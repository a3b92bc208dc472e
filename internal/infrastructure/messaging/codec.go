package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

// ErrMalformedEvent marks a payload that can never be handled, so consumers drop it
// instead of asking for redelivery.
var ErrMalformedEvent = errors.New("malformed user event")

// EventHandler consumes decoded user events.
type EventHandler interface {
	Handle(ctx context.Context, event entity.UserEvent) error
}

func encodeEvent(event entity.UserEvent) ([]byte, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal user event: %w", err)
	}
	return b, nil
}

func decodeEvent(data []byte) (entity.UserEvent, error) {
	var event entity.UserEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return entity.UserEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if !event.Valid() {
		return entity.UserEvent{}, fmt.Errorf("%w: operation %q email %q", ErrMalformedEvent, event.Operation, event.Email)
	}
	return event, nil
}
