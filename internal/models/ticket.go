package models

import (
	"time"

	"github.com/uptrace/bun"
)

// GroupingPolicy decides which seat-unit combinations of a ticket may be reserved together.
type GroupingPolicy string

const (
	PolicyEven        GroupingPolicy = "even"
	PolicyAllTogether GroupingPolicy = "all_together"
	PolicyAvoidOne    GroupingPolicy = "avoid_one"
)

func (p GroupingPolicy) Valid() bool {
	switch p {
	case PolicyEven, PolicyAllTogether, PolicyAvoidOne:
		return true
	}
	return false
}

// Ticket is the event/showing. Stock is the aggregate count of unsold units and
// is tracked independently of the per-seat statuses.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	ID       int64          `bun:"id,pk,autoincrement" json:"id"`
	Name     string         `bun:"name,notnull" json:"name"`
	Type     GroupingPolicy `bun:"type,notnull" json:"type"`
	Deadline time.Time      `bun:"deadline,notnull" json:"deadline"`
	Stock    int            `bun:"stock,notnull" json:"stock"`
}
