package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ticket-selling/internal/models"
)

func (d *DB) CreateSeatUnits(ctx context.Context, units []models.SeatUnit) error {
	if len(units) == 0 {
		return nil
	}
	if _, err := d.conn(ctx).NewInsert().Model(&units).Exec(ctx); err != nil {
		return fmt.Errorf("insert seat units: %w", err)
	}
	return nil
}

// GetSeatUnits returns the stored seat units for ids, ordered by id.
func (d *DB) GetSeatUnits(ctx context.Context, ids []int64) ([]models.SeatUnit, error) {
	units := make([]models.SeatUnit, 0, len(ids))
	if len(ids) == 0 {
		return units, nil
	}
	err := d.conn(ctx).NewSelect().
		Model(&units).
		Where("id IN (?)", bun.In(ids)).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select seat units: %w", err)
	}
	return units, nil
}

// LookupSeatUnitsByIDs joins each seat unit with its ticket's policy and stock.
// Unknown ids are simply absent from the result.
func (d *DB) LookupSeatUnitsByIDs(ctx context.Context, ids []int64) ([]models.SeatUnitRow, error) {
	rows := make([]models.SeatUnitRow, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}
	err := d.conn(ctx).NewSelect().
		TableExpr("ticket_stocks AS ts").
		ColumnExpr(`ts.id, ts.ticket_id, t.type, ts."row", ts.seat, t.stock, ts.price`).
		Join("JOIN tickets AS t ON t.id = ts.ticket_id").
		Where("ts.id IN (?)", bun.In(ids)).
		OrderExpr("ts.id ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("lookup seat units: %w", err)
	}
	return rows, nil
}

// UpdateSeatUnitsStatus moves every unit in ids from one status to another in a
// single conditional update. If any unit is not currently in from, nothing the
// caller can rely on was applied and ErrConflict is returned; run it inside
// WithTx to have the partial update rolled back.
func (d *DB) UpdateSeatUnitsStatus(ctx context.Context, ids []int64, from, to models.SeatUnitStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: seat unit %s -> %s", models.ErrInvalidTransition, from, to)
	}
	ids = distinct(ids)
	if len(ids) == 0 {
		return models.ErrNotFound
	}

	res, err := d.conn(ctx).NewUpdate().
		Model((*models.SeatUnit)(nil)).
		Set("status = ?", to).
		Where("id IN (?)", bun.In(ids)).
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update seat units %s -> %s: %w", from, to, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return fmt.Errorf("%w: %d of %d seat units were %s", models.ErrConflict, n, len(ids), from)
	}
	return nil
}

// UpdateSeatUnitsStatusReturningTicket is UpdateSeatUnitsStatus for a batch that
// belongs to one ticket, and returns that ticket's id.
func (d *DB) UpdateSeatUnitsStatusReturningTicket(ctx context.Context, ids []int64, from, to models.SeatUnitStatus) (int64, error) {
	if err := d.UpdateSeatUnitsStatus(ctx, ids, from, to); err != nil {
		return 0, err
	}

	var ticketIDs []int64
	err := d.conn(ctx).NewSelect().
		Model((*models.SeatUnit)(nil)).
		ColumnExpr("DISTINCT ticket_id").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx, &ticketIDs)
	if err != nil {
		return 0, fmt.Errorf("select ticket of seat units: %w", err)
	}

	switch len(ticketIDs) {
	case 0:
		return 0, models.ErrNotFound
	case 1:
		return ticketIDs[0], nil
	default:
		return 0, fmt.Errorf("%w: seat units span %d tickets", models.ErrConflict, len(ticketIDs))
	}
}
