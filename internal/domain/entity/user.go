package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
)

// User representa un usuario del POS (cajero, encargado o administrador).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
