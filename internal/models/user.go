package models

import "github.com/uptrace/bun"

// User owns reservations and payments. Only the id is consulted by the
// lifecycle; the rest is account data carried over from the legacy schema.
type User struct {
	bun.BaseModel `bun:"table:users"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Username string `bun:"username,type:varchar(30),notnull" json:"username"`
	Email    string `bun:"email,type:varchar(30),notnull,unique" json:"email"`
	Password string `bun:"password,type:varchar(100),notnull" json:"-"`
}
