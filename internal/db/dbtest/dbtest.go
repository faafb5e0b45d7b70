// Package dbtest opens throwaway in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ticket-selling/internal/db"
	"ticket-selling/internal/models"
)

// Users is how many accounts New creates. They get ids 1 to Users.
const Users = 4

// New returns a migrated database that is closed when t finishes. It holds
// the test users and no catalog. A single connection keeps every query on the
// same in-memory database.
func New(t *testing.T) *db.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	store := db.New(bun.NewDB(sqldb, sqlitedialect.New()))
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))
	for i := 1; i <= Users; i++ {
		require.NoError(t, store.CreateUser(ctx, &models.User{
			Username: fmt.Sprintf("buyer%d", i),
			Email:    fmt.Sprintf("buyer%d@example.com", i),
			Password: "x",
		}))
	}
	return store
}

// Seeded is New plus the demo catalog, with deadlines relative to now.
func Seeded(t *testing.T, now time.Time) *db.DB {
	t.Helper()

	store := New(t)
	inserted, err := store.Seed(context.Background(), now)
	require.NoError(t, err)
	require.True(t, inserted)
	return store
}

// Catalog creates one ticket with the given seats, all in stock, and returns the
// ticket and the seat-unit ids in insertion order.
func Catalog(t *testing.T, store *db.DB, policy models.GroupingPolicy, stock int, price int64, rowSeat ...[2]int) (*models.Ticket, []int64) {
	t.Helper()
	ctx := context.Background()

	ticket := &models.Ticket{
		Name:     fmt.Sprintf("%s show", policy),
		Type:     policy,
		Deadline: time.Now().Add(24 * time.Hour),
		Stock:    stock,
	}
	require.NoError(t, store.CreateTicket(ctx, ticket))

	units := make([]models.SeatUnit, 0, len(rowSeat))
	for _, rs := range rowSeat {
		units = append(units, models.SeatUnit{
			TicketID: ticket.ID,
			Status:   models.SeatInStock,
			Price:    price,
			Row:      rs[0],
			Seat:     rs[1],
		})
	}
	require.NoError(t, store.CreateSeatUnits(ctx, units))

	ids := make([]int64, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	return ticket, ids
}
