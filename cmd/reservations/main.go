package main

import (
	"os"

	"libroom/internal/reservations/events"
	"libroom/internal/reservations/handler"
	"libroom/internal/reservations/repository"
	"libroom/internal/reservations/service"
	"libroom/internal/reservations/validator"
	"libroom/pkg/app"
	"libroom/pkg/config"
	"libroom/pkg/kafka"
	kafkaconfig "libroom/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")

	publisher := initPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	reservationService := initServices(cfg, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.ReservationService {
	requestValidator := validator.NewRequestValidator(cfg.Log)
	requestRepo := repository.NewMongoRequestRepository(cfg)
	blockedRepo := repository.NewMongoBlockedWindowRepository(cfg)
	lockRepo := repository.NewSlotLockRepository(cfg)

	reservationService := service.NewReservationService(
		requestRepo,
		blockedRepo,
		lockRepo,
		requestValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return reservationService
}

// initPublisher wires Kafka producers when brokers are configured. Without
// KAFKA_BROKERS the service runs standalone and drops lifecycle events.
func initPublisher(cfg *config.Config) events.Publisher {
	if os.Getenv(kafkaconfig.EnvKafkaBrokers) == "" {
		cfg.Log.Warn("KAFKA_BROKERS not set, lifecycle events disabled")
		return events.NoopPublisher{}
	}

	kafkaCfg := kafkaconfig.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	submitted, err := kafka.NewProducer(kafkaCfg, events.TopicSubmitted, events.TopicSubmittedDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create submitted-event producer", "error", err)
	}
	decided, err := kafka.NewProducer(kafkaCfg, events.TopicDecided, events.TopicDecidedDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create decided-event producer", "error", err)
	}

	return events.NewKafkaPublisher(submitted, decided, ServiceName, cfg.Log)
}
