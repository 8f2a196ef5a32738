package entity

import "time"

// Provider is the public profile of a provider-kind user. Rating and
// ReviewCount are denormalized aggregates maintained by the review service;
// they always reflect the provider's full review set across all services.
type Provider struct {
	ID                string
	UserID            string
	Name              string
	Image             string
	CoverImage        string
	Rating            float64
	ReviewCount       int
	Location          string
	Categories        []string
	IsVerified        bool
	CompletedProjects int
	Description       string
	ContactEmail      string
	ContactPhone      string
	Website           string
	WorkingHours      string
	Gallery           []string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
