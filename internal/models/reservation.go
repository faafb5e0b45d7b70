package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationExpired   ReservationStatus = "expired"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationCompleted, ReservationCancelled, ReservationExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the reservation has left Pending for good.
func (s ReservationStatus) IsTerminal() bool {
	return s.Valid() && s != ReservationPending
}

func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	return s == ReservationPending && next.IsTerminal()
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID          int64             `bun:"id,pk,autoincrement" json:"id"`
	SeatUnitIDs IDList            `bun:"ticket_stock_ids,type:varchar,notnull" json:"ticket_stock_ids"`
	Date        time.Time         `bun:"date,notnull" json:"date"`
	UserID      int64             `bun:"user_id,notnull" json:"user_id"`
	Status      ReservationStatus `bun:"status,notnull" json:"status"`
	Deadline    time.Time         `bun:"deadline,notnull" json:"deadline"`
}

type ReservationRequest struct {
	TicketStockIDs []int64 `json:"ticket_stock_ids"`
	UserID         int64   `json:"user_id"`
}

type CreateReservationResponse struct {
	ReservationID int64 `json:"reservation_id"`
	TicketID      int64 `json:"ticket_id"`
	TotalPrice    int64 `json:"total_price"`
}

// ReserveResponse is what the reserve flow hands back once the payment record exists.
type ReserveResponse struct {
	ReservationID int64 `json:"reservation_id"`
	TicketID      int64 `json:"ticket_id"`
	TotalPrice    int64 `json:"total_price"`
	PaymentID     int64 `json:"payment_id"`
}

// ReservationStatusRow drives the confirm-or-expire decision.
type ReservationStatusRow struct {
	ID       int64             `bun:"id" json:"id"`
	Status   ReservationStatus `bun:"status" json:"status"`
	Deadline time.Time         `bun:"deadline" json:"deadline"`
}

type ReservationSummary struct {
	ID             int64             `json:"id"`
	TicketQuantity int               `json:"ticket_quantity"`
	Cost           int64             `json:"cost"`
	Status         ReservationStatus `json:"status"`
	Event          string            `json:"event"`
}
