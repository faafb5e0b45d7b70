package models

import (
	"time"

	"github.com/google/uuid"
)

type LifecycleEventType string

const (
	EventReservationCreated   LifecycleEventType = "reservation.created"
	EventReservationCompleted LifecycleEventType = "reservation.completed"
	EventReservationCancelled LifecycleEventType = "reservation.cancelled"
	EventReservationExpired   LifecycleEventType = "reservation.expired"
)

// LifecycleEvent is published after a lifecycle sequence commits.
type LifecycleEvent struct {
	EventID       string             `json:"event_id"`
	Type          LifecycleEventType `json:"type"`
	ReservationID int64              `json:"reservation_id"`
	PaymentID     int64              `json:"payment_id"`
	TicketID      int64              `json:"ticket_id,omitempty"`
	SeatUnitIDs   []int64            `json:"seat_unit_ids"`
	Amount        int64              `json:"amount,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

func NewLifecycleEvent(eventType LifecycleEventType, reservationID, paymentID int64, seatUnitIDs []int64, occurredAt time.Time) LifecycleEvent {
	return LifecycleEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		ReservationID: reservationID,
		PaymentID:     paymentID,
		SeatUnitIDs:   seatUnitIDs,
		OccurredAt:    occurredAt,
	}
}
