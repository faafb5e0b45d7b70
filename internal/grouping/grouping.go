// Package grouping decides whether a set of seat units may be reserved together
// under its ticket's grouping policy. Everything here is pure.
package grouping

import (
	"sort"

	"ticket-selling/internal/models"
)

// Validate checks the looked-up rows for one reservation request against the
// policy of the ticket they belong to.
func Validate(rows []models.SeatUnitRow) error {
	if len(rows) == 0 {
		return models.ErrUnableToCreateReservation
	}

	first := rows[0]
	for _, r := range rows[1:] {
		if r.TicketID != first.TicketID {
			return models.ErrUnableToCreateReservation
		}
	}

	switch first.Type {
	case models.PolicyEven:
		if !IsEven(len(rows)) {
			return models.ErrOnlyEvenQuantity
		}
	case models.PolicyAllTogether:
		if !IsAllTogether(rows) {
			return models.ErrOnlyAllTogether
		}
	case models.PolicyAvoidOne:
		if LeavesOne(first.Stock, len(rows)) {
			return models.ErrAvoidOne
		}
	default:
		return models.ErrUnableToCreateReservation
	}

	return nil
}

func IsEven(n int) bool {
	return n%2 == 0
}

// LeavesOne reports whether selling requested units out of stock would leave
// zero or exactly one unit unsold.
func LeavesOne(stock, requested int) bool {
	return stock-requested <= 1
}

// IsAllTogether orders the seats by row then seat, both descending, and requires
// every neighbour in that order to be at most one row and one seat away.
func IsAllTogether(rows []models.SeatUnitRow) bool {
	sorted := SortForGrouping(rows)
	for i := 1; i < len(sorted); i++ {
		if abs(sorted[i].Row-sorted[i-1].Row) > 1 {
			return false
		}
		if abs(sorted[i].Seat-sorted[i-1].Seat) > 1 {
			return false
		}
	}
	return true
}

// SortForGrouping returns a sorted copy; the input is left untouched.
func SortForGrouping(rows []models.SeatUnitRow) []models.SeatUnitRow {
	sorted := make([]models.SeatUnitRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row > sorted[j].Row
		}
		return sorted[i].Seat > sorted[j].Seat
	})
	return sorted
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
