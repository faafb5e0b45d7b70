package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/uptrace/bun/driver/pgdriver"

	"ticket-selling/internal/models"
)

func (d *DB) CreateUser(ctx context.Context, u *models.User) error {
	if _, err := d.conn(ctx).NewInsert().Model(u).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (d *DB) UserExists(ctx context.Context, id int64) (bool, error) {
	ok, err := d.conn(ctx).NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("lookup user %d: %w", id, err)
	}
	return ok, nil
}

// requireUser fails with ErrUnknownUser before an insert that references
// userID. SQLite only enforces foreign keys when the pragma is on.
func (d *DB) requireUser(ctx context.Context, userID int64) error {
	ok, err := d.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %d", models.ErrUnknownUser, userID)
	}
	return nil
}

// foreignKeyViolation recognises the error from each driver main and
// cmd/migrate open: lib/pq and pgdriver report SQLSTATE 23503.
func foreignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
