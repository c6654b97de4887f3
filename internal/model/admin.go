package model

import (
	"time"
)

type AdminUser struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

type CreateAdminUserParams struct {
	Username     string
	PasswordHash string
	Role         string
}
