package entity

import "time"

// Category is a bilingual marketplace category. Slug is the stable,
// user-facing identifier used in URLs and on services.
type Category struct {
	ID            string
	Slug          string
	Title         string
	TitleAr       string
	Description   string
	DescriptionAr string
	ImageSrc      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
