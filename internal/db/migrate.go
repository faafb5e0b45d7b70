package db

import (
	"context"
	"fmt"

	"ticket-selling/internal/models"
)

type index struct {
	name   string
	model  interface{}
	column string
}

var indexes = []index{
	{"fki_ticket_stocks_tickets", (*models.SeatUnit)(nil), "ticket_id"},
	{"fki_reservations_users", (*models.Reservation)(nil), "user_id"},
	{"fki_payments_reservations", (*models.Payment)(nil), "reservation_id"},
	{"fki_payments_users", (*models.Payment)(nil), "user_id"},
}

// Migrate creates the tables and indexes when they are missing. It works for
// both the postgres and sqlite dialects.
func (d *DB) Migrate(ctx context.Context) error {
	tables := []struct {
		model       interface{}
		foreignKeys []string
	}{
		{(*models.User)(nil), nil},
		{(*models.Ticket)(nil), nil},
		{(*models.SeatUnit)(nil), []string{`("ticket_id") REFERENCES "tickets" ("id")`}},
		{(*models.Reservation)(nil), []string{`("user_id") REFERENCES "users" ("id")`}},
		{(*models.Payment)(nil), []string{
			`("reservation_id") REFERENCES "reservations" ("id")`,
			`("user_id") REFERENCES "users" ("id")`,
		}},
	}

	for _, t := range tables {
		q := d.Bun.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	for _, idx := range indexes {
		_, err := d.Bun.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}

// DropAll removes every table, dependents first.
func (d *DB) DropAll(ctx context.Context) error {
	tables := []interface{}{
		(*models.Payment)(nil),
		(*models.Reservation)(nil),
		(*models.SeatUnit)(nil),
		(*models.Ticket)(nil),
		(*models.User)(nil),
	}
	for _, m := range tables {
		if _, err := d.Bun.NewDropTable().Model(m).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
