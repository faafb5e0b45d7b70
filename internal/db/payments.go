package db

import (
	"context"
	"fmt"

	"ticket-selling/internal/models"
)

func (d *DB) InsertPayment(ctx context.Context, p *models.Payment) error {
	if _, err := d.conn(ctx).NewInsert().Model(p).Exec(ctx); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (d *DB) LookupPayment(ctx context.Context, id int64) (*models.Payment, error) {
	var p models.Payment
	err := d.conn(ctx).NewSelect().
		Model(&p).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// UpdatePaymentStatus moves a pending payment to a terminal status and returns
// its reservation id.
func (d *DB) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) (int64, error) {
	if !models.PaymentPending.CanTransitionTo(status) {
		return 0, fmt.Errorf("%w: payment -> %s", models.ErrInvalidTransition, status)
	}

	res, err := d.conn(ctx).NewUpdate().
		Model((*models.Payment)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Where("status = ?", models.PaymentPending).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("update payment %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	p, err := d.LookupPayment(ctx, id)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: payment %d is %s", models.ErrInvalidTransition, id, p.Status)
	}
	return p.ReservationID, nil
}
