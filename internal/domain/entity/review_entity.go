package entity

import "time"

// Review links a user's rating and comment to a service and its provider.
// Reviews are immutable once created.
type Review struct {
	ID         string
	UserID     string
	ServiceID  string
	ProviderID string
	Rating     int
	Comment    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
