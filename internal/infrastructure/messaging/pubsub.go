package messaging

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

// PubSubSender publishes user events to a Google Cloud Pub/Sub topic.
type PubSubSender struct {
	topic *pubsub.Topic
}

func NewPubSubSender(topic *pubsub.Topic) (*PubSubSender, error) {
	if topic == nil {
		return nil, errors.New("topic is nil")
	}
	return &PubSubSender{topic: topic}, nil
}

func (p *PubSubSender) Send(ctx context.Context, event entity.UserEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"operation": string(event.Operation)},
	})
	// Block until the server has accepted the message.
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("pubsub: result.Get: %w", err)
	}
	return nil
}

// Stop flushes pending messages.
func (p *PubSubSender) Stop() {
	p.topic.Stop()
}

// PubSubSubscriber is a pubsub async subscriber of user events.
type PubSubSubscriber struct {
	subscription *pubsub.Subscription
	logger       *logrus.Logger
}

func NewPubSubSubscriber(subscription *pubsub.Subscription, logger *logrus.Logger) *PubSubSubscriber {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PubSubSubscriber{subscription: subscription, logger: logger}
}

// Consume blocks until ctx is cancelled. Malformed messages are acked so they are
// not redelivered; handler failures are nacked.
func (s *PubSubSubscriber) Consume(ctx context.Context, handler EventHandler) error {
	err := s.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		event, err := decodeEvent(msg.Data)
		if err != nil {
			s.logger.WithError(err).WithField("message-id", msg.ID).Warn("bad message")
			msg.Ack()
			return
		}
		if err := handler.Handle(ctx, event); err != nil {
			s.logger.WithError(err).WithField("operation", event.Operation).Error("user event handler failed")
			msg.Nack()
			return
		}
		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("error receiving messages from subscription: %w", err)
	}
	return nil
}

// EnsureTopic returns the topic, creating it first when it does not exist.
func EnsureTopic(ctx context.Context, client *pubsub.Client, topicID string) (*pubsub.Topic, error) {
	topic, err := client.CreateTopic(ctx, topicID)
	if err == nil {
		return topic, nil
	}
	if status.Code(err) == codes.AlreadyExists {
		return client.Topic(topicID), nil
	}
	return nil, fmt.Errorf("create topic %s: %w", topicID, err)
}

// EnsureSubscription returns the subscription, creating it on topic when missing.
func EnsureSubscription(ctx context.Context, client *pubsub.Client, subID string, topic *pubsub.Topic) (*pubsub.Subscription, error) {
	sub, err := client.CreateSubscription(ctx, subID, pubsub.SubscriptionConfig{Topic: topic})
	if err == nil {
		return sub, nil
	}
	if status.Code(err) == codes.AlreadyExists {
		return client.Subscription(subID), nil
	}
	return nil, fmt.Errorf("create subscription %s: %w", subID, err)
}
