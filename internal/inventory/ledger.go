// Package inventory tracks per-seat status and each ticket's aggregate stock.
package inventory

import (
	"context"
	"fmt"

	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
)

type DBLayer interface {
	LookupSeatUnitsByIDs(ctx context.Context, ids []int64) ([]models.SeatUnitRow, error)
	UpdateSeatUnitsStatus(ctx context.Context, ids []int64, from, to models.SeatUnitStatus) error
	UpdateSeatUnitsStatusReturningTicket(ctx context.Context, ids []int64, from, to models.SeatUnitStatus) (int64, error)
	AdjustTicketStock(ctx context.Context, ticketID int64, delta int) error
}

// Ledger applies seat-unit and stock mutations. Each call is a single
// conditional write, so a call either applies to the whole batch or fails.
type Ledger struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewLedger(db DBLayer, log *logger.Logger) *Ledger {
	return &Ledger{DB: db, Logger: log}
}

func (l *Ledger) LookupSeatUnits(ctx context.Context, ids []int64) ([]models.SeatUnitRow, error) {
	return l.DB.LookupSeatUnitsByIDs(ctx, ids)
}

// MarkPending claims in-stock units for a new reservation.
func (l *Ledger) MarkPending(ctx context.Context, ids []int64) error {
	if err := l.DB.UpdateSeatUnitsStatus(ctx, ids, models.SeatInStock, models.SeatPending); err != nil {
		return fmt.Errorf("mark seat units pending: %w", err)
	}
	return nil
}

// MarkSold settles pending units and reports the ticket they belong to.
func (l *Ledger) MarkSold(ctx context.Context, ids []int64) (int64, error) {
	ticketID, err := l.DB.UpdateSeatUnitsStatusReturningTicket(ctx, ids, models.SeatPending, models.SeatSold)
	if err != nil {
		return 0, fmt.Errorf("mark seat units sold: %w", err)
	}
	l.Logger.LogInventory("SOLD", ticketID, fmt.Sprintf("%d seat units sold", len(ids)))
	return ticketID, nil
}

// ReleaseToStock returns a reservation's pending units to stock and reports
// the ticket they belong to.
func (l *Ledger) ReleaseToStock(ctx context.Context, ids []int64) (int64, error) {
	ticketID, err := l.DB.UpdateSeatUnitsStatusReturningTicket(ctx, ids, models.SeatPending, models.SeatInStock)
	if err != nil {
		return 0, fmt.Errorf("release seat units: %w", err)
	}
	l.Logger.LogInventory("RELEASE", ticketID, fmt.Sprintf("%d seat units back in stock", len(ids)))
	return ticketID, nil
}

// DecrementStock fails rather than letting the stock drop below zero.
func (l *Ledger) DecrementStock(ctx context.Context, ticketID int64, count int) error {
	if count <= 0 {
		return fmt.Errorf("decrement stock of ticket %d by %d: %w", ticketID, count, models.ErrInvalidTransition)
	}
	if err := l.DB.AdjustTicketStock(ctx, ticketID, -count); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	l.Logger.LogInventory("DECREMENT", ticketID, fmt.Sprintf("stock -%d", count))
	return nil
}

func (l *Ledger) IncrementStock(ctx context.Context, ticketID int64, count int) error {
	if count <= 0 {
		return fmt.Errorf("increment stock of ticket %d by %d: %w", ticketID, count, models.ErrInvalidTransition)
	}
	if err := l.DB.AdjustTicketStock(ctx, ticketID, count); err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	l.Logger.LogInventory("INCREMENT", ticketID, fmt.Sprintf("stock +%d", count))
	return nil
}
