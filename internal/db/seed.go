package db

import (
	"context"
	"fmt"
	"time"

	"ticket-selling/internal/models"
)

type seedSeat struct {
	price int64
	row   int
	seat  int
}

type seedTicket struct {
	ticket models.Ticket
	seats  []seedSeat
}

// demoUser matches the account the legacy database shipped with.
func demoUser() models.User {
	return models.User{
		Username: "john.smith123",
		Email:    "john@smith.com",
		Password: "5937bf4bc1dcc483b34aa7cbbb754875",
	}
}

func demoCatalog(now time.Time) []seedTicket {
	deadline := now.AddDate(0, 1, 0)
	return []seedTicket{
		{
			ticket: models.Ticket{Name: "Spider-Man: No Way Home (Bow Tie Cinemas Movieland 6)", Type: models.PolicyEven, Deadline: deadline, Stock: 4},
			seats:  []seedSeat{{25, 2, 3}, {25, 2, 4}, {25, 2, 5}, {25, 2, 6}},
		},
		{
			ticket: models.Ticket{Name: "Elvis (Regal Aviation Mall)", Type: models.PolicyAllTogether, Deadline: deadline, Stock: 5},
			seats:  []seedSeat{{15, 3, 10}, {15, 3, 11}, {15, 3, 12}, {12, 4, 1}, {12, 4, 2}},
		},
		{
			ticket: models.Ticket{Name: "MINIONS: THE RISE OF GRU (Rotterdam Square Cinema)", Type: models.PolicyAvoidOne, Deadline: deadline, Stock: 3},
			seats:  []seedSeat{{10, 1, 1}, {10, 2, 4}, {8, 3, 2}},
		},
	}
}

// Seed inserts the demo user and catalog when no ticket exists yet. The user is
// skipped when an account with its email is already present. It reports
// whether anything was inserted.
func (d *DB) Seed(ctx context.Context, now time.Time) (bool, error) {
	count, err := d.conn(ctx).NewSelect().Model((*models.Ticket)(nil)).Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count tickets: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	err = d.WithTx(ctx, func(ctx context.Context) error {
		user := demoUser()
		exists, err := d.conn(ctx).NewSelect().
			Model((*models.User)(nil)).
			Where("email = ?", user.Email).
			Exists(ctx)
		if err != nil {
			return fmt.Errorf("lookup demo user: %w", err)
		}
		if !exists {
			if err := d.CreateUser(ctx, &user); err != nil {
				return err
			}
		}

		for _, st := range demoCatalog(now) {
			ticket := st.ticket
			if err := d.CreateTicket(ctx, &ticket); err != nil {
				return err
			}
			units := make([]models.SeatUnit, 0, len(st.seats))
			for _, s := range st.seats {
				units = append(units, models.SeatUnit{
					TicketID: ticket.ID,
					Status:   models.SeatInStock,
					Price:    s.price,
					Row:      s.row,
					Seat:     s.seat,
				})
			}
			if err := d.CreateSeatUnits(ctx, units); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
