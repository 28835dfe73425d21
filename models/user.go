package models

import "github.com/uptrace/bun"

// User is a dashboard login. Password holds a bcrypt hash.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID   int64  `bun:"user_id,pk,autoincrement" json:"userID"`
	Username string `bun:"username,notnull,unique" json:"username"`
	Password string `bun:"password,notnull" json:"-"`
}
