package db

import (
	"context"
	"fmt"

	"ticket-selling/internal/models"
)

func (d *DB) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if _, err := d.conn(ctx).NewInsert().Model(ticket).Exec(ctx); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

func (d *DB) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.conn(ctx).NewSelect().
		Model(&ticket).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err)
	}
	return &ticket, nil
}

// AdjustTicketStock adds delta to the ticket's aggregate stock. The update only
// applies while the result stays non-negative.
func (d *DB) AdjustTicketStock(ctx context.Context, ticketID int64, delta int) error {
	conn := d.conn(ctx)
	res, err := conn.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("stock = stock + ?", delta).
		Where("id = ?", ticketID).
		Where("stock + ? >= 0", delta).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("adjust stock of ticket %d: %w", ticketID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	exists, err := conn.NewSelect().Model((*models.Ticket)(nil)).Where("id = ?", ticketID).Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return models.ErrNotFound
	}
	return fmt.Errorf("%w: stock of ticket %d cannot drop by %d", models.ErrConflict, ticketID, -delta)
}
