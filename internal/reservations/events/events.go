package events

import (
	"time"

	"libroom/pkg/model"
)

// Topics carrying reservation lifecycle events.
const (
	TopicSubmitted = "reservation.submitted"
	TopicDecided   = "reservation.decided"

	TopicSubmittedDLQ = "reservation.submitted.dlq"
	TopicDecidedDLQ   = "reservation.decided.dlq"
)

// Event type header values.
const (
	TypeSubmitted = "reservation_submitted"
	TypeApproved  = "reservation_approved"
	TypeRejected  = "reservation_rejected"
)

// SubmittedEvent is published after a request survives the conflict check
// and lands in storage.
type SubmittedEvent struct {
	RequestNumber string    `json:"request_number"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	EventType     string    `json:"event_type"`
	Attendees     int       `json:"attendees"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// DecidedEvent is published after an administrator approves or rejects.
type DecidedEvent struct {
	RequestNumber string    `json:"request_number"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Status        string    `json:"status"`
	AdminComment  string    `json:"admin_comment,omitempty"`
	DecidedAt     time.Time `json:"decided_at"`
}

func NewSubmittedEvent(r *model.ReservationRequest) SubmittedEvent {
	return SubmittedEvent{
		RequestNumber: r.RequestNumber,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		FullName:      r.FullName,
		Email:         r.Email,
		EventType:     r.EventType,
		Attendees:     r.Attendees,
		SubmittedAt:   r.CreatedAt,
	}
}

func NewDecidedEvent(r *model.ReservationRequest) DecidedEvent {
	decidedAt := time.Now().UTC()
	if r.RespondedAt != nil {
		decidedAt = *r.RespondedAt
	}
	return DecidedEvent{
		RequestNumber: r.RequestNumber,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		FullName:      r.FullName,
		Email:         r.Email,
		Status:        r.Status,
		AdminComment:  r.AdminComment,
		DecidedAt:     decidedAt,
	}
}
