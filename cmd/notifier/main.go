package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-service/config"
	"github.com/oksasatya/go-user-service/internal/application"
	"github.com/oksasatya/go-user-service/internal/infrastructure/messaging"
	"github.com/oksasatya/go-user-service/pkg/helpers"
	"github.com/oksasatya/go-user-service/pkg/mailer"
)

// consumer is satisfied by every broker subscription.
type consumer interface {
	Consume(ctx context.Context, handler messaging.EventHandler) error
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifier", cfg.Env)

	var m application.Mailer
	if cfg.MailSendEnabled {
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
			logger.Fatal("Mailgun not configured")
		}
		m = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	} else {
		logger.Warn("MAIL_SEND_ENABLED=false; notifications are logged, not sent")
		m = mailer.LogMailer{Logger: logger}
	}
	notifier := application.NewNotifier(m, cfg.SiteName, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, closeConsumer, err := openConsumer(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("failed to subscribe on %s: %v", cfg.EventBroker, err)
	}
	defer closeConsumer()

	done := make(chan error, 1)
	go func() { done <- c.Consume(ctx, notifier) }()

	events := cfg.Events()
	logger.WithFields(logrus.Fields{
		"broker": cfg.EventBroker,
		"topic":  events.TopicName,
		"group":  events.GroupID,
	}).Info("notifier listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		logger.Info("shutting down...")
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
		}
	case err := <-done:
		if err != nil {
			helpers.LogError(logger, "consumer stopped", err, nil)
			closeConsumer()
			os.Exit(1)
		}
	}
}

func openConsumer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (consumer, func(), error) {
	events := cfg.Events()
	switch cfg.EventBroker {
	case config.BrokerRabbitMQ:
		c, err := messaging.NewRabbitConsumer(events.BootstrapAddress, events.TopicName, events.GroupID, 16, logger)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case config.BrokerPubSub:
		client, err := pubsub.NewClient(ctx, cfg.PubSubProjectID)
		if err != nil {
			return nil, nil, err
		}
		topic, err := messaging.EnsureTopic(ctx, client, events.TopicName)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		sub, err := messaging.EnsureSubscription(ctx, client, events.GroupID, topic)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return messaging.NewPubSubSubscriber(sub, logger), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("EVENT_BROKER %q has nothing to consume", cfg.EventBroker)
	}
}
