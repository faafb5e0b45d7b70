package db

import (
	"context"
	"fmt"
	"math"

	"github.com/uptrace/bun"

	"ticket-selling/internal/models"
)

type seatUnitLine struct {
	ID    int64  `bun:"id"`
	Price int64  `bun:"price"`
	Name  string `bun:"name"`
}

// ListReservations returns one page of reservations ordered by id, each with
// its seat count, summed seat prices and event name. A page whose offset would
// not fit in 32 bits is empty.
func (d *DB) ListReservations(ctx context.Context, page, limit int) ([]models.ReservationSummary, error) {
	if page < 0 || limit < 1 || page > math.MaxInt32/limit {
		return []models.ReservationSummary{}, nil
	}
	conn := d.conn(ctx)

	var reservations []models.Reservation
	err := conn.NewSelect().
		Model(&reservations).
		OrderExpr("id ASC").
		Limit(limit).
		Offset(page * limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select reservations: %w", err)
	}

	summaries := make([]models.ReservationSummary, 0, len(reservations))
	if len(reservations) == 0 {
		return summaries, nil
	}

	var ids []int64
	for _, r := range reservations {
		ids = append(ids, r.SeatUnitIDs...)
	}
	ids = distinct(ids)

	lines := make([]seatUnitLine, 0, len(ids))
	if len(ids) > 0 {
		err = conn.NewSelect().
			TableExpr("ticket_stocks AS ts").
			ColumnExpr("ts.id, ts.price, t.name").
			Join("JOIN tickets AS t ON t.id = ts.ticket_id").
			Where("ts.id IN (?)", bun.In(ids)).
			Scan(ctx, &lines)
		if err != nil {
			return nil, fmt.Errorf("select reserved seat units: %w", err)
		}
	}

	byID := make(map[int64]seatUnitLine, len(lines))
	for _, l := range lines {
		byID[l.ID] = l
	}

	for _, r := range reservations {
		s := models.ReservationSummary{
			ID:             r.ID,
			TicketQuantity: len(r.SeatUnitIDs),
			Status:         r.Status,
		}
		for _, id := range r.SeatUnitIDs {
			l, ok := byID[id]
			if !ok {
				continue
			}
			s.Cost += l.Price
			if s.Event == "" {
				s.Event = l.Name
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
