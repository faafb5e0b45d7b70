package db

import (
	"context"
	"fmt"

	"ticket-selling/internal/models"
)

// InsertReservation stores r and fills in its id. A user id with no users row
// yields ErrUnknownUser.
func (d *DB) InsertReservation(ctx context.Context, r *models.Reservation) error {
	if err := d.requireUser(ctx, r.UserID); err != nil {
		return err
	}
	if _, err := d.conn(ctx).NewInsert().Model(r).Exec(ctx); err != nil {
		if foreignKeyViolation(err) {
			return fmt.Errorf("%w: %d: %w", models.ErrUnknownUser, r.UserID, err)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (d *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var r models.Reservation
	err := d.conn(ctx).NewSelect().
		Model(&r).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// UpdateReservationStatus moves a pending reservation to a terminal status and
// returns the seat-unit ids it holds. A reservation that already left Pending
// yields ErrInvalidTransition.
func (d *DB) UpdateReservationStatus(ctx context.Context, id int64, status models.ReservationStatus) ([]int64, error) {
	if !models.ReservationPending.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: reservation -> %s", models.ErrInvalidTransition, status)
	}

	conn := d.conn(ctx)
	res, err := conn.NewUpdate().
		Model((*models.Reservation)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Where("status = ?", models.ReservationPending).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update reservation %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	r, err := d.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: reservation %d is %s", models.ErrInvalidTransition, id, r.Status)
	}
	return r.SeatUnitIDs, nil
}

// LookupReservationStatusByPaymentID resolves the reservation behind a payment.
func (d *DB) LookupReservationStatusByPaymentID(ctx context.Context, paymentID int64) (*models.ReservationStatusRow, error) {
	var row models.ReservationStatusRow
	err := d.conn(ctx).NewSelect().
		TableExpr("payments AS p").
		ColumnExpr("r.id, r.status, r.deadline").
		Join("JOIN reservations AS r ON r.id = p.reservation_id").
		Where("p.id = ?", paymentID).
		Limit(1).
		Scan(ctx, &row)
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}
