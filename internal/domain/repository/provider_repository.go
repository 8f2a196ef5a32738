package repository

import "github.com/khadamatapp/marketplace-api/internal/domain/entity"

// ProviderFilter narrows provider listings. Zero values mean "no filter".
type ProviderFilter struct {
	Category     string
	VerifiedOnly bool
	Limit        int
}

// ProviderUpdate carries the allow-listed mutable profile fields.
type ProviderUpdate struct {
	Name              *string
	Image             *string
	CoverImage        *string
	Location          *string
	Categories        *[]string
	Description       *string
	ContactEmail      *string
	ContactPhone      *string
	Website           *string
	WorkingHours      *string
	Gallery           *[]string
	CompletedProjects *int
}

type ProviderRepository interface {
	Create(p *entity.Provider) error
	GetByID(id string) (*entity.Provider, error)
	GetByUserID(userID string) (*entity.Provider, error)
	List(f ProviderFilter) ([]*entity.Provider, error)
	Update(id string, upd ProviderUpdate) (*entity.Provider, error)
	// UpdateAggregates overwrites the denormalized rating/review count.
	UpdateAggregates(id string, rating float64, count int) error
}
