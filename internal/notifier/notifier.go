package notifier

import (
	"context"
	"fmt"

	"libroom/internal/reservations/events"
	"libroom/pkg/kafka"
	"libroom/pkg/logger"
	"libroom/pkg/model"
)

// Notifier turns reservation lifecycle events into applicant emails. It is
// driven by the Kafka consumer; a permanent error parks the message on the
// DLQ instead of blocking the partition.
type Notifier struct {
	mailer Mailer
	log    *logger.Logger
}

func NewNotifier(mailer Mailer, log *logger.Logger) *Notifier {
	return &Notifier{
		mailer: mailer,
		log:    log,
	}
}

// HandleSubmitted acknowledges receipt of a new request.
func (n *Notifier) HandleSubmitted(ctx context.Context, msg kafka.Message) error {
	var event events.SubmittedEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode submitted event", err)
	}
	if event.Email == "" {
		return kafka.NewPermanentError("submitted event has no applicant email", nil)
	}

	subject := fmt.Sprintf("Reservation request %s received", event.RequestNumber)
	plain := fmt.Sprintf(
		"Hello %s,\n\n"+
			"We received your reservation request %s for the community room on %s from %s to %s.\n"+
			"The library staff will review it and you will hear back by email.\n\n"+
			"Library Room Reservations",
		event.FullName, event.RequestNumber, event.Date, event.StartTime, event.EndTime,
	)
	html := fmt.Sprintf(
		"<p>Hello %s,</p>"+
			"<p>We received your reservation request <strong>%s</strong> for the community room on "+
			"<strong>%s</strong> from <strong>%s</strong> to <strong>%s</strong>.</p>"+
			"<p>The library staff will review it and you will hear back by email.</p>"+
			"<p>Library Room Reservations</p>",
		event.FullName, event.RequestNumber, event.Date, event.StartTime, event.EndTime,
	)

	if err := n.mailer.Send(event.Email, event.FullName, subject, plain, html); err != nil {
		return kafka.NewTransientError("failed to send submission receipt", err)
	}

	n.log.Info("Submission receipt sent",
		"request_number", event.RequestNumber,
		"event_id", msg.GetEventID(),
	)
	return nil
}

// HandleDecided tells the applicant the outcome of their request.
func (n *Notifier) HandleDecided(ctx context.Context, msg kafka.Message) error {
	var event events.DecidedEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode decided event", err)
	}
	if event.Email == "" {
		return kafka.NewPermanentError("decided event has no applicant email", nil)
	}

	subject, plain, html, err := decisionEmail(event)
	if err != nil {
		return kafka.NewPermanentError("failed to render decision email", err)
	}

	if err := n.mailer.Send(event.Email, event.FullName, subject, plain, html); err != nil {
		return kafka.NewTransientError("failed to send decision email", err)
	}

	n.log.Info("Decision email sent",
		"request_number", event.RequestNumber,
		"status", event.Status,
		"event_id", msg.GetEventID(),
	)
	return nil
}

func decisionEmail(event events.DecidedEvent) (subject, plain, html string, err error) {
	comment := ""
	commentHTML := ""
	if event.AdminComment != "" {
		comment = fmt.Sprintf("\nStaff comment: %s\n", event.AdminComment)
		commentHTML = fmt.Sprintf("<p>Staff comment: %s</p>", event.AdminComment)
	}

	switch event.Status {
	case model.StatusApproved:
		subject = fmt.Sprintf("Reservation %s approved", event.RequestNumber)
		plain = fmt.Sprintf(
			"Hello %s,\n\n"+
				"Your reservation %s for the community room on %s from %s to %s has been approved.\n"+
				"%s\n"+
				"Library Room Reservations",
			event.FullName, event.RequestNumber, event.Date, event.StartTime, event.EndTime, comment,
		)
		html = fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>Your reservation <strong>%s</strong> for the community room on <strong>%s</strong> "+
				"from <strong>%s</strong> to <strong>%s</strong> has been <strong>approved</strong>.</p>"+
				"%s"+
				"<p>Library Room Reservations</p>",
			event.FullName, event.RequestNumber, event.Date, event.StartTime, event.EndTime, commentHTML,
		)
	case model.StatusRejected:
		subject = fmt.Sprintf("Reservation %s rejected", event.RequestNumber)
		plain = fmt.Sprintf(
			"Hello %s,\n\n"+
				"Unfortunately your reservation %s for the community room on %s from %s to %s was rejected.\n"+
				"%s\n"+
				"Library Room Reservations",
			event.FullName, event.RequestNumber, event.Date, event.StartTime, event.EndTime, comment,
		)
		html = fmt.Sprintf(
			"<p>Hello %s,</p>"+
				"<p>Unfortunately your reservation <strong>%s</strong> for the community room on "+
				"<strong>%s</strong> from <strong>%s</strong> to <strong>%s</strong> was <strong>rejected</strong>.</p>"+
				"%s"+
				"<p>Library Room Reservations</p>",
			event.FullName, event.RequestNumber, event.Date, event.StartTime, event.EndTime, commentHTML,
		)
	default:
		err = fmt.Errorf("unknown decision status: %q", event.Status)
	}

	return subject, plain, html, err
}
