package repository

import "github.com/khadamatapp/marketplace-api/internal/domain/entity"

// ServiceFilter narrows service listings. Zero values mean "no filter".
type ServiceFilter struct {
	Category    string
	PopularOnly bool
	Limit       int
}

// ServiceUpdate carries the allow-listed mutable fields of a service.
type ServiceUpdate struct {
	Title        *string
	PriceRange   *string
	ImageSrc     *string
	Category     *string
	Description  *string
	Location     *string
	DeliveryTime *string
	Images       *[]string
	Features     *[]string
	IsPopular    *bool
}

type ServiceRepository interface {
	Create(s *entity.Service) error
	GetByID(id string) (*entity.Service, error)
	List(f ServiceFilter) ([]*entity.Service, error)
	ListByProvider(providerID string, limit int) ([]*entity.Service, error)
	Update(id string, upd ServiceUpdate) (*entity.Service, error)
	Delete(id string) error
	// UpdateAggregates overwrites the denormalized rating/review count.
	UpdateAggregates(id string, rating float64, count int) error
}
