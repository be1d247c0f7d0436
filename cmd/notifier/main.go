package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	"libroom/internal/notifier"
	"libroom/internal/reservations/events"
	"libroom/pkg/kafka"
	kafkaconfig "libroom/pkg/kafka/config"
	"libroom/pkg/logger"
)

const ServiceName = "notifier"

const (
	submittedGroupID = "notifier-submitted"
	decidedGroupID   = "notifier-decided"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Level:     getEnv("LOG_LEVEL", logger.LevelInfo),
		Format:    logger.FormatJSON,
		AddSource: true,
		Service:   ServiceName,
	})

	log.Info("Starting Notifier worker")

	mailer, err := notifier.NewSendGridMailer(log)
	if err != nil {
		log.Fatal("Failed to configure mailer", "error", err)
	}
	worker := notifier.NewNotifier(mailer, log)

	kafkaCfg := kafkaconfig.Load()
	kafkaCfg.LogConfiguration(log.Info)

	submittedConsumer, err := kafka.NewConsumer(
		kafkaCfg, events.TopicSubmitted, submittedGroupID, events.TopicSubmittedDLQ, worker.HandleSubmitted,
	)
	if err != nil {
		log.Fatal("Failed to create submitted-event consumer", "error", err)
	}
	decidedConsumer, err := kafka.NewConsumer(
		kafkaCfg, events.TopicDecided, decidedGroupID, events.TopicDecidedDLQ, worker.HandleDecided,
	)
	if err != nil {
		log.Fatal("Failed to create decided-event consumer", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, c := range []struct {
		name     string
		consumer *kafka.Consumer
	}{
		{"submitted", submittedConsumer},
		{"decided", decidedConsumer},
	} {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Info("Consumer started", "consumer", c.name)
			if err := c.consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Consumer stopped with error", "consumer", c.name, "error", err)
			}
		}()
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	log.Info("Shutdown signal received", "signal", sig)

	cancel()
	wg.Wait()

	if err := submittedConsumer.Close(); err != nil {
		log.Error("Failed to close submitted-event consumer", "error", err)
	}
	if err := decidedConsumer.Close(); err != nil {
		log.Error("Failed to close decided-event consumer", "error", err)
	}

	log.Info("Notifier stopped gracefully")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
