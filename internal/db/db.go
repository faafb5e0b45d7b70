package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ticket-selling/internal/models"
)

// DB is the storage collaborator for the reservation lifecycle. Every method
// runs on the transaction carried by ctx when there is one.
type DB struct {
	Bun *bun.DB
}

func New(bunDB *bun.DB) *DB {
	return &DB{Bun: bunDB}
}

// Ping checks the underlying connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.Bun.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.Bun.Close()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
