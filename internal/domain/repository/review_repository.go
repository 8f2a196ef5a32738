package repository

import "github.com/khadamatapp/marketplace-api/internal/domain/entity"

type ReviewRepository interface {
	Create(r *entity.Review) error
	// ListByService returns every review of a service (aggregation input).
	ListByService(serviceID string) ([]*entity.Review, error)
	// ListByProvider returns every review referencing the provider across
	// all of its services (aggregation input).
	ListByProvider(providerID string) ([]*entity.Review, error)
	ListLatestByService(serviceID string, limit int) ([]*entity.Review, error)
	ListLatestByProvider(providerID string, limit int) ([]*entity.Review, error)
	// DeleteByService removes a service's reviews (cascade on service delete).
	DeleteByService(serviceID string) (int64, error)
}
