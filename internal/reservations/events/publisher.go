package events

import (
	"context"

	"libroom/pkg/kafka"
	"libroom/pkg/logger"
	"libroom/pkg/model"
)

// Publisher emits reservation lifecycle events. Event publication is
// best-effort: a broker outage never fails the HTTP request that caused
// the event.
type Publisher interface {
	PublishSubmitted(ctx context.Context, request *model.ReservationRequest)
	PublishDecided(ctx context.Context, request *model.ReservationRequest)
	Close() error
}

type kafkaPublisher struct {
	submitted *kafka.Producer
	decided   *kafka.Producer
	source    string
	log       *logger.Logger
}

func NewKafkaPublisher(submitted, decided *kafka.Producer, source string, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		submitted: submitted,
		decided:   decided,
		source:    source,
		log:       log,
	}
}

func (p *kafkaPublisher) PublishSubmitted(ctx context.Context, request *model.ReservationRequest) {
	msg := kafka.NewMessage().
		WithKey(request.RequestNumber).
		WithValue(NewSubmittedEvent(request)).
		WithEventType(TypeSubmitted).
		WithSource(p.source).
		Build()

	if err := p.submitted.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish submitted event",
			"request_number", request.RequestNumber,
			"error", err,
		)
		return
	}

	p.log.Debug("Published submitted event", "request_number", request.RequestNumber)
}

func (p *kafkaPublisher) PublishDecided(ctx context.Context, request *model.ReservationRequest) {
	eventType := TypeRejected
	if request.Status == model.StatusApproved {
		eventType = TypeApproved
	}

	msg := kafka.NewMessage().
		WithKey(request.RequestNumber).
		WithValue(NewDecidedEvent(request)).
		WithEventType(eventType).
		WithSource(p.source).
		Build()

	if err := p.decided.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish decided event",
			"request_number", request.RequestNumber,
			"error", err,
		)
		return
	}

	p.log.Debug("Published decided event",
		"request_number", request.RequestNumber,
		"status", request.Status,
	)
}

func (p *kafkaPublisher) Close() error {
	err := p.submitted.Close()
	if closeErr := p.decided.Close(); err == nil {
		err = closeErr
	}
	return err
}

// NoopPublisher drops every event. Used when the broker is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishSubmitted(ctx context.Context, request *model.ReservationRequest) {}
func (NoopPublisher) PublishDecided(ctx context.Context, request *model.ReservationRequest)   {}
func (NoopPublisher) Close() error                                                            { return nil }
