package models

import (
	"github.com/uptrace/bun"
)

type SeatUnitStatus string

const (
	SeatInStock SeatUnitStatus = "in_stock"
	SeatPending SeatUnitStatus = "pending"
	SeatSold    SeatUnitStatus = "sold"
)

func (s SeatUnitStatus) Valid() bool {
	switch s {
	case SeatInStock, SeatPending, SeatSold:
		return true
	}
	return false
}

// CanTransitionTo reports whether a seat unit may move from s to next.
// Sold is final; a pending unit is either sold or released back to stock.
func (s SeatUnitStatus) CanTransitionTo(next SeatUnitStatus) bool {
	switch s {
	case SeatInStock:
		return next == SeatPending
	case SeatPending:
		return next == SeatSold || next == SeatInStock
	}
	return false
}

// SeatUnit is one individually reservable seat of a ticket.
type SeatUnit struct {
	bun.BaseModel `bun:"table:ticket_stocks"`

	ID       int64          `bun:"id,pk,autoincrement" json:"id"`
	TicketID int64          `bun:"ticket_id,notnull,unique:ticket_id_row_seat" json:"ticket_id"`
	Status   SeatUnitStatus `bun:"status,notnull" json:"status"`
	Price    int64          `bun:"price,notnull" json:"price"`
	Row      int            `bun:"row,notnull,unique:ticket_id_row_seat" json:"row"`
	Seat     int            `bun:"seat,notnull,unique:ticket_id_row_seat" json:"seat"`
}

// SeatUnitRow is a seat unit joined with its ticket, as fed to the grouping validator.
type SeatUnitRow struct {
	ID       int64          `bun:"id" json:"id"`
	TicketID int64          `bun:"ticket_id" json:"ticket_id"`
	Type     GroupingPolicy `bun:"type" json:"type"`
	Row      int            `bun:"row" json:"row"`
	Seat     int            `bun:"seat" json:"seat"`
	Stock    int            `bun:"stock" json:"stock"`
	Price    int64          `bun:"price" json:"price"`
}
