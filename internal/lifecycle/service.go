// Package lifecycle sequences the reservation, payment and inventory steps of
// each external request.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"ticket-selling/internal/clock"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
	"ticket-selling/internal/seatlock"
)

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Reservations interface {
	Create(ctx context.Context, seatUnitIDs []int64, userID int64) (*models.CreateReservationResponse, error)
	Complete(ctx context.Context, id int64) ([]int64, error)
	Cancel(ctx context.Context, id int64) ([]int64, error)
	Expire(ctx context.Context, id int64) ([]int64, error)
	StatusByPaymentID(ctx context.Context, paymentID int64) (*models.ReservationStatusRow, error)
	List(ctx context.Context, page, limit int) ([]models.ReservationSummary, error)
}

type Payments interface {
	Create(ctx context.Context, reservationID, userID, amount int64) (int64, error)
	Complete(ctx context.Context, id int64) (int64, error)
	Cancel(ctx context.Context, id int64) (int64, error)
	Get(ctx context.Context, id int64) (*models.Payment, error)
}

type Inventory interface {
	MarkPending(ctx context.Context, ids []int64) error
	MarkSold(ctx context.Context, ids []int64) (int64, error)
	ReleaseToStock(ctx context.Context, ids []int64) (int64, error)
	DecrementStock(ctx context.Context, ticketID int64, count int) error
	IncrementStock(ctx context.Context, ticketID int64, count int) error
}

type SeatLocker interface {
	CheckSeatsAvailability(ctx context.Context, ids []int64) (bool, []int64, error)
	LockSeats(ctx context.Context, ids []int64, owner string) (bool, error)
	UnlockSeats(ctx context.Context, ids []int64, owner string) error
}

type EventPublisher interface {
	PublishLifecycleEvent(ctx context.Context, event models.LifecycleEvent) error
}

type Service struct {
	Tx           Transactor
	Reservations Reservations
	Payments     Payments
	Inventory    Inventory
	Locker       SeatLocker
	Publishers   []EventPublisher
	Clock        clock.Clock
	Logger       *logger.Logger

	atomic bool
}

type Option func(*Service)

// WithSeatLocker adds Redis seat claims in front of the storage writes.
func WithSeatLocker(l SeatLocker) Option {
	return func(s *Service) { s.Locker = l }
}

// WithPublisher adds a sink for committed lifecycle events. It may be given
// more than once.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.Publishers = append(s.Publishers, p) }
}

// WithoutTransactions runs every step on its own. A failing later step then
// leaves the earlier ones applied; nothing compensates for them.
func WithoutTransactions() Option {
	return func(s *Service) { s.atomic = false }
}

func NewService(tx Transactor, reservations Reservations, payments Payments, inventory Inventory, clk clock.Clock, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		Tx:           tx,
		Reservations: reservations,
		Payments:     payments,
		Inventory:    inventory,
		Clock:        clk,
		Logger:       log,
		atomic:       true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.atomic && s.Tx != nil {
		return s.Tx.WithTx(ctx, fn)
	}
	return fn(ctx)
}

// ledgerErr reports a lost race on seat units or stock as a failed reservation.
func ledgerErr(err error) error {
	if errors.Is(err, models.ErrConflict) {
		return fmt.Errorf("%w: %w", models.ErrUnableToCreateReservation, err)
	}
	return err
}

// Reserve creates a pending reservation, takes its seat units out of stock
// and opens the payment that will settle it.
func (s *Service) Reserve(ctx context.Context, req models.ReservationRequest) (*models.ReserveResponse, error) {
	var resp *models.ReserveResponse
	var owner string

	if err := s.checkClaims(ctx, req.TicketStockIDs); err != nil {
		return nil, err
	}

	err := s.run(ctx, func(ctx context.Context) error {
		created, err := s.Reservations.Create(ctx, req.TicketStockIDs, req.UserID)
		if err != nil {
			return err
		}

		if s.Locker != nil {
			claim := seatlock.Owner(created.ReservationID)
			ok, err := s.Locker.LockSeats(ctx, req.TicketStockIDs, claim)
			if err != nil {
				return fmt.Errorf("%w: seat claim: %w", models.ErrUnableToCreateReservation, err)
			}
			if !ok {
				return fmt.Errorf("%w: seat units are held by another reservation", models.ErrUnableToCreateReservation)
			}
			owner = claim
		}

		if err := s.Inventory.DecrementStock(ctx, created.TicketID, len(req.TicketStockIDs)); err != nil {
			return ledgerErr(err)
		}
		if err := s.Inventory.MarkPending(ctx, req.TicketStockIDs); err != nil {
			return ledgerErr(err)
		}

		paymentID, err := s.Payments.Create(ctx, created.ReservationID, req.UserID, created.TotalPrice)
		if err != nil {
			return err
		}

		resp = &models.ReserveResponse{
			ReservationID: created.ReservationID,
			TicketID:      created.TicketID,
			TotalPrice:    created.TotalPrice,
			PaymentID:     paymentID,
		}
		return nil
	})
	if err != nil {
		if owner != "" {
			s.unlock(ctx, req.TicketStockIDs, owner)
		}
		return nil, err
	}

	event := s.event(models.EventReservationCreated, resp.ReservationID, resp.PaymentID, resp.TicketID, req.TicketStockIDs)
	event.Amount = resp.TotalPrice
	s.publish(ctx, event)

	return resp, nil
}

// ConfirmOrExpire settles the payment while its reservation is inside the hold
// window. Past the deadline the reservation expires instead: the expiry is
// committed and the caller still gets ErrReservationExpired.
func (s *Service) ConfirmOrExpire(ctx context.Context, paymentID int64) error {
	var (
		expired       bool
		reservationID int64
		ticketID      int64
		ids           []int64
	)

	err := s.run(ctx, func(ctx context.Context) error {
		status, err := s.Reservations.StatusByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := models.TerminalStatusError(status.Status); err != nil {
			return err
		}

		if !status.Deadline.After(s.Clock.Now()) {
			reservationID = status.ID
			ids, ticketID, err = s.expire(ctx, status.ID, paymentID)
			if err != nil {
				return err
			}
			expired = true
			return nil
		}

		reservationID, err = s.Payments.Complete(ctx, paymentID)
		if err != nil {
			return err
		}
		ids, err = s.Reservations.Complete(ctx, reservationID)
		if err != nil {
			return err
		}
		ticketID, err = s.Inventory.MarkSold(ctx, ids)
		return err
	})
	if err != nil {
		return s.settledErr(ctx, paymentID, err)
	}

	s.unlock(ctx, ids, seatlock.Owner(reservationID))

	if expired {
		s.Logger.LogReservation("EXPIRE", reservationID, fmt.Sprintf("payment %d arrived after the deadline", paymentID))
		s.publish(ctx, s.event(models.EventReservationExpired, reservationID, paymentID, ticketID, ids))
		return models.ErrReservationExpired
	}

	s.publish(ctx, s.event(models.EventReservationCompleted, reservationID, paymentID, ticketID, ids))
	return nil
}

func (s *Service) expire(ctx context.Context, reservationID, paymentID int64) ([]int64, int64, error) {
	ids, err := s.Reservations.Expire(ctx, reservationID)
	if err != nil {
		return nil, 0, err
	}
	if _, err := s.Payments.Cancel(ctx, paymentID); err != nil {
		return nil, 0, err
	}
	ticketID, err := s.restock(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return ids, ticketID, nil
}

func (s *Service) restock(ctx context.Context, ids []int64) (int64, error) {
	ticketID, err := s.Inventory.ReleaseToStock(ctx, ids)
	if err != nil {
		return 0, err
	}
	return ticketID, s.Inventory.IncrementStock(ctx, ticketID, len(ids))
}

// Cancel abandons a pending reservation through its payment and puts the seat
// units back on sale.
func (s *Service) Cancel(ctx context.Context, paymentID int64) error {
	var (
		reservationID int64
		ticketID      int64
		ids           []int64
	)

	err := s.run(ctx, func(ctx context.Context) error {
		status, err := s.Reservations.StatusByPaymentID(ctx, paymentID)
		if err != nil {
			return err
		}
		if err := models.TerminalStatusError(status.Status); err != nil {
			return err
		}

		reservationID, err = s.Payments.Cancel(ctx, paymentID)
		if err != nil {
			return err
		}
		ids, err = s.Reservations.Cancel(ctx, reservationID)
		if err != nil {
			return err
		}
		ticketID, err = s.restock(ctx, ids)
		return err
	})
	if err != nil {
		return s.settledErr(ctx, paymentID, err)
	}

	s.unlock(ctx, ids, seatlock.Owner(reservationID))
	s.publish(ctx, s.event(models.EventReservationCancelled, reservationID, paymentID, ticketID, ids))
	return nil
}

func (s *Service) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	return s.Payments.Get(ctx, id)
}

func (s *Service) ListReservations(ctx context.Context, page, limit int) ([]models.ReservationSummary, error) {
	return s.Reservations.List(ctx, page, limit)
}

// settledErr turns a lost status race into the terminal-state error the
// winning request left behind.
func (s *Service) settledErr(ctx context.Context, paymentID int64, err error) error {
	if !errors.Is(err, models.ErrInvalidTransition) {
		return err
	}
	status, lookupErr := s.Reservations.StatusByPaymentID(ctx, paymentID)
	if lookupErr != nil {
		return err
	}
	if terminal := models.TerminalStatusError(status.Status); terminal != nil {
		return terminal
	}
	return err
}

// checkClaims turns a request away before any storage write when another
// reservation already claims one of its seat units. LockSeats still settles
// races between requests that both pass this check.
func (s *Service) checkClaims(ctx context.Context, ids []int64) error {
	if s.Locker == nil || len(ids) == 0 {
		return nil
	}
	free, held, err := s.Locker.CheckSeatsAvailability(ctx, ids)
	if err != nil {
		return fmt.Errorf("%w: seat claim: %w", models.ErrUnableToCreateReservation, err)
	}
	if !free {
		s.Logger.Info("REDIS", fmt.Sprintf("seat units %v already claimed, request turned away", held))
		return fmt.Errorf("%w: seat units %v are held by another reservation", models.ErrUnableToCreateReservation, held)
	}
	return nil
}

func (s *Service) unlock(ctx context.Context, ids []int64, owner string) {
	if s.Locker == nil || len(ids) == 0 {
		return
	}
	if err := s.Locker.UnlockSeats(ctx, ids, owner); err != nil {
		s.Logger.Warn("REDIS", fmt.Sprintf("releasing seat claims of %s: %v", owner, err))
	}
}

func (s *Service) event(t models.LifecycleEventType, reservationID, paymentID, ticketID int64, ids []int64) models.LifecycleEvent {
	event := models.NewLifecycleEvent(t, reservationID, paymentID, ids, s.Clock.Now())
	event.TicketID = ticketID
	return event
}

func (s *Service) publish(ctx context.Context, event models.LifecycleEvent) {
	for _, p := range s.Publishers {
		if err := p.PublishLifecycleEvent(ctx, event); err != nil {
			s.Logger.Error("EVENTS", fmt.Sprintf("publishing %s for reservation %d: %v", event.Type, event.ReservationID, err))
		}
	}
}
