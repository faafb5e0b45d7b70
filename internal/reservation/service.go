// Package reservation owns the reservation record and its status transitions.
// It never touches seat units or stock; the lifecycle package sequences those.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ticket-selling/internal/clock"
	"ticket-selling/internal/grouping"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
)

// DefaultHoldWindow is how long a pending reservation holds its seats.
const DefaultHoldWindow = 15 * time.Minute

type DBLayer interface {
	InsertReservation(ctx context.Context, r *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, id int64, status models.ReservationStatus) ([]int64, error)
	LookupReservationStatusByPaymentID(ctx context.Context, paymentID int64) (*models.ReservationStatusRow, error)
	ListReservations(ctx context.Context, page, limit int) ([]models.ReservationSummary, error)
}

// SeatUnitLookup feeds the grouping validator.
type SeatUnitLookup interface {
	LookupSeatUnits(ctx context.Context, ids []int64) ([]models.SeatUnitRow, error)
}

type Service struct {
	DB         DBLayer
	Seats      SeatUnitLookup
	Clock      clock.Clock
	HoldWindow time.Duration
	Logger     *logger.Logger
}

type Option func(*Service)

func WithHoldWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.HoldWindow = d
		}
	}
}

func NewService(db DBLayer, seats SeatUnitLookup, clk clock.Clock, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		DB:         db,
		Seats:      seats,
		Clock:      clk,
		HoldWindow: DefaultHoldWindow,
		Logger:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the requested seat units against their ticket's grouping
// policy and stores a pending reservation for them. Nothing is written when
// validation fails.
func (s *Service) Create(ctx context.Context, seatUnitIDs []int64, userID int64) (*models.CreateReservationResponse, error) {
	if len(seatUnitIDs) == 0 {
		return nil, models.ErrUnableToCreateReservation
	}
	if hasDuplicates(seatUnitIDs) {
		return nil, fmt.Errorf("%w: duplicate seat unit ids", models.ErrUnableToCreateReservation)
	}

	rows, err := s.Seats.LookupSeatUnits(ctx, seatUnitIDs)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows) != len(seatUnitIDs) {
		return nil, fmt.Errorf("%w: %d of %d seat units exist", models.ErrUnableToCreateReservation, len(rows), len(seatUnitIDs))
	}
	if err := grouping.Validate(rows); err != nil {
		return nil, err
	}

	var total int64
	for _, r := range rows {
		total += r.Price
	}

	now := s.Clock.Now()
	r := &models.Reservation{
		SeatUnitIDs: append(models.IDList(nil), seatUnitIDs...),
		Date:        now,
		UserID:      userID,
		Status:      models.ReservationPending,
		Deadline:    now.Add(s.HoldWindow),
	}
	if err := s.DB.InsertReservation(ctx, r); err != nil {
		if errors.Is(err, models.ErrUnknownUser) {
			return nil, fmt.Errorf("%w: %w", models.ErrUnableToCreateReservation, err)
		}
		return nil, err
	}

	s.Logger.LogReservation("CREATE", r.ID, fmt.Sprintf("%d seat units of ticket %d held until %s", len(seatUnitIDs), rows[0].TicketID, r.Deadline.Format(time.RFC3339)))

	return &models.CreateReservationResponse{
		ReservationID: r.ID,
		TicketID:      rows[0].TicketID,
		TotalPrice:    total,
	}, nil
}

// Complete, Cancel and Expire move a pending reservation to a terminal status
// and return the seat-unit ids it holds.
func (s *Service) Complete(ctx context.Context, id int64) ([]int64, error) {
	return s.transition(ctx, id, models.ReservationCompleted)
}

func (s *Service) Cancel(ctx context.Context, id int64) ([]int64, error) {
	return s.transition(ctx, id, models.ReservationCancelled)
}

func (s *Service) Expire(ctx context.Context, id int64) ([]int64, error) {
	return s.transition(ctx, id, models.ReservationExpired)
}

func (s *Service) transition(ctx context.Context, id int64, status models.ReservationStatus) ([]int64, error) {
	ids, err := s.DB.UpdateReservationStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	s.Logger.LogReservation(strings.ToUpper(string(status)), id, fmt.Sprintf("%d seat units", len(ids)))
	return ids, nil
}

func (s *Service) StatusByPaymentID(ctx context.Context, paymentID int64) (*models.ReservationStatusRow, error) {
	return s.DB.LookupReservationStatusByPaymentID(ctx, paymentID)
}

func (s *Service) List(ctx context.Context, page, limit int) ([]models.ReservationSummary, error) {
	return s.DB.ListReservations(ctx, page, limit)
}

func hasDuplicates(ids []int64) bool {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
