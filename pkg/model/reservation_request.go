package model

import (
	"time"
)

// Reservation request lifecycle. A request is created pending and moves to
// approved or rejected exactly once; there is no way back.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Event types an applicant can book the room for.
const (
	EventTalk       = "talk"
	EventWorkshop   = "workshop"
	EventBookClub   = "book_club"
	EventMeeting    = "meeting"
	EventExhibition = "exhibition"
	EventOther      = "other"
)

// ReservationRequest is one applicant's attempt to book the room. Date and
// times are stored as zero-padded strings ("2006-01-02", "15:04") so that
// Mongo range filters compare them correctly.
type ReservationRequest struct {
	ID            string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RequestNumber string     `json:"request_number,omitempty" bson:"request_number" validate:"omitempty"`
	Date          string     `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime     string     `json:"start_time" bson:"start_time" validate:"required,datetime=15:04"`
	EndTime       string     `json:"end_time" bson:"end_time" validate:"required,datetime=15:04"`
	FullName      string     `json:"full_name" bson:"full_name" validate:"required,trimmed_min=3,max=120"`
	DocumentID    string     `json:"document_id" bson:"document_id" validate:"required,document_id"`
	Email         string     `json:"email" bson:"email" validate:"required,email"`
	Phone         string     `json:"phone" bson:"phone" validate:"required,phone_digits"`
	EventType     string     `json:"event_type" bson:"event_type" validate:"required,oneof=talk workshop book_club meeting exhibition other"`
	Attendees     int        `json:"attendees" bson:"attendees" validate:"required,min=1,max=50"`
	Description   string     `json:"description" bson:"description" validate:"required,trimmed_min=10,max=2000"`
	Equipment     string     `json:"equipment,omitempty" bson:"equipment,omitempty" validate:"omitempty,max=500"`
	Status        string     `json:"status,omitempty" bson:"status" validate:"omitempty,oneof=pending approved rejected"`
	AdminComment  string     `json:"admin_comment,omitempty" bson:"admin_comment,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty" bson:"responded_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Terminal reports whether the request has already been decided.
func (r *ReservationRequest) Terminal() bool {
	return r.Status == StatusApproved || r.Status == StatusRejected
}

// Decision is the administrator's verdict on a pending request.
type Decision struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=500"`
}
