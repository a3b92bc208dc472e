package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/internal/domain/entity"
)

// RabbitSender publishes user events to a durable fanout exchange named after the topic.
type RabbitSender struct {
	conn     *amqp.Connection
	Exchange string

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
	ch *amqp.Channel
}

func NewRabbitSender(url, exchange string) (*RabbitSender, error) {
	conn, ch, err := dialExchange(url, exchange)
	if err != nil {
		return nil, err
	}
	return &RabbitSender{conn: conn, ch: ch, Exchange: exchange}, nil
}

func (s *RabbitSender) Send(ctx context.Context, event entity.UserEvent) error {
	b, err := encodeEvent(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.PublishWithContext(ctx,
		s.Exchange,
		"",    // fanout ignores the routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
}

func (s *RabbitSender) Close() {
	if s == nil {
		return
	}
	closeAMQP(s.conn, s.ch)
}

// RabbitConsumer reads user events from a durable queue named after the consumer group,
// bound to the topic exchange.
type RabbitConsumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	Queue  string
	logger *logrus.Logger
}

func NewRabbitConsumer(url, exchange, queue string, prefetch int, logger *logrus.Logger) (*RabbitConsumer, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	conn, ch, err := dialExchange(url, exchange)
	if err != nil {
		return nil, err
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		closeAMQP(conn, ch)
		return nil, fmt.Errorf("qos: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		closeAMQP(conn, ch)
		return nil, fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(queue, "", exchange, false, nil); err != nil {
		closeAMQP(conn, ch)
		return nil, fmt.Errorf("queue bind: %w", err)
	}
	return &RabbitConsumer{conn: conn, ch: ch, Queue: queue, logger: logger}, nil
}

// Consume blocks until ctx is cancelled or the broker closes the delivery channel.
func (c *RabbitConsumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.ch.Consume(c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			handleDelivery(ctx, c.logger, handler, msg)
		}
	}
}

func (c *RabbitConsumer) Close() {
	if c == nil {
		return
	}
	closeAMQP(c.conn, c.ch)
}

// handleDelivery acks handled events, drops malformed ones and requeues the rest.
func handleDelivery(ctx context.Context, logger *logrus.Logger, handler EventHandler, msg amqp.Delivery) {
	event, err := decodeEvent(msg.Body)
	if err != nil {
		logger.WithError(err).Warn("bad message")
		_ = msg.Nack(false, false)
		return
	}
	if err := handler.Handle(ctx, event); err != nil {
		logger.WithError(err).WithField("operation", event.Operation).Error("user event handler failed")
		_ = msg.Nack(false, !errors.Is(err, ErrMalformedEvent))
		return
	}
	_ = msg.Ack(false)
}

func dialExchange(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		closeAMQP(conn, ch)
		return nil, nil, fmt.Errorf("exchange declare: %w", err)
	}
	return conn, ch, nil
}

func closeAMQP(conn *amqp.Connection, ch *amqp.Channel) {
	if ch != nil {
		_ = ch.Close()
	}
	if conn != nil {
		_ = conn.Close()
	}
}
