package entity

import (
	"time"
)

// UserType distinguishes buyers from provider-kind accounts.
type UserType string

const (
	UserTypeCustomer UserType = "customer"
	UserTypeProvider UserType = "provider"
)

// User is the identity record. Passwords are stored as bcrypt hashes in
// Password; Initials is derived from Name at registration and never
// recomputed afterwards.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	UserType  UserType
	Phone     string
	Avatar    string
	Initials  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
