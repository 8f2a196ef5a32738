package repository

import (
	"time"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
)

// OrderUpdate carries the allow-listed mutable fields of an order. Anything
// outside this set never reaches storage.
type OrderUpdate struct {
	Status        *entity.OrderStatus
	PaymentStatus *entity.PaymentStatus
	Requirements  *string
	DeliveryDate  *time.Time
}

type OrderRepository interface {
	Create(o *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// ListByUser returns the buyer's orders newest first; status "" means all.
	ListByUser(userID string, status entity.OrderStatus) ([]*entity.Order, error)
	Update(id string, upd OrderUpdate) (*entity.Order, error)
}
