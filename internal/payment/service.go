// Package payment owns the payment record that settles a reservation.
package payment

import (
	"context"
	"fmt"

	"ticket-selling/internal/clock"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
)

type DBLayer interface {
	InsertPayment(ctx context.Context, p *models.Payment) error
	UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) (int64, error)
	LookupPayment(ctx context.Context, id int64) (*models.Payment, error)
}

type Service struct {
	DB     DBLayer
	Clock  clock.Clock
	Logger *logger.Logger
}

func NewService(db DBLayer, clk clock.Clock, log *logger.Logger) *Service {
	return &Service{DB: db, Clock: clk, Logger: log}
}

// Create records a pending payment for a reservation. The amount is fixed here
// and never recomputed.
func (s *Service) Create(ctx context.Context, reservationID, userID, amount int64) (int64, error) {
	p := &models.Payment{
		ReservationID: reservationID,
		UserID:        userID,
		Amount:        amount,
		Status:        models.PaymentPending,
		Date:          s.Clock.Now(),
	}
	if err := s.DB.InsertPayment(ctx, p); err != nil {
		return 0, err
	}
	s.Logger.LogPayment("CREATE", p.ID, fmt.Sprintf("reservation %d amount %d", reservationID, amount))
	return p.ID, nil
}

// Complete and Cancel return the id of the reservation the payment settles.
func (s *Service) Complete(ctx context.Context, id int64) (int64, error) {
	return s.transition(ctx, id, models.PaymentCompleted)
}

func (s *Service) Cancel(ctx context.Context, id int64) (int64, error) {
	return s.transition(ctx, id, models.PaymentCancelled)
}

func (s *Service) transition(ctx context.Context, id int64, status models.PaymentStatus) (int64, error) {
	reservationID, err := s.DB.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return 0, err
	}
	s.Logger.LogPayment("UPDATE", id, fmt.Sprintf("%s for reservation %d", status, reservationID))
	return reservationID, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Payment, error) {
	return s.DB.LookupPayment(ctx, id)
}
