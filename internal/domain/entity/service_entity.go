package entity

import "time"

// Service is an offering created by a provider. Rating and ReviewCount are
// denormalized aggregates over the service's own reviews.
type Service struct {
	ID           string
	ProviderID   string
	Title        string
	ProviderName string
	Rating       float64
	ReviewCount  int
	PriceRange   string
	ImageSrc     string
	Category     string
	Description  string
	Location     string
	DeliveryTime string
	Images       []string
	Features     []string
	IsPopular    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
