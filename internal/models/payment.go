package models

import (
	"time"

	"github.com/uptrace/bun"
)

// PaymentStatus has no expired variant; expiry lives on the reservation only.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) IsTerminal() bool {
	return s.Valid() && s != PaymentPending
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return s == PaymentPending && next.IsTerminal()
}

type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID            int64         `bun:"id,pk,autoincrement" json:"id"`
	ReservationID int64         `bun:"reservation_id,notnull" json:"reservation_id"`
	UserID        int64         `bun:"user_id,notnull" json:"user_id"`
	Amount        int64         `bun:"amount,notnull" json:"amount"`
	Status        PaymentStatus `bun:"status,notnull" json:"status"`
	Date          time.Time     `bun:"date,notnull" json:"date"`
}
