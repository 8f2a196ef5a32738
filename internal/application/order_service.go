package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	repo "github.com/khadamatapp/marketplace-api/internal/domain/repository"
	"github.com/khadamatapp/marketplace-api/pkg/mailer"
)

// OrderService creates orders and guards access to them. Every read and
// mutation of a single order passes the same owning-user check: the acting
// user must be the buyer or the user owning the order's provider profile.
type OrderService struct {
	Orders    repo.OrderRepository
	Services  repo.ServiceRepository
	Providers repo.ProviderRepository
	Users     repo.UserRepository
	Logger    *logrus.Logger
	EmailPub  Publisher
}

func NewOrderService(orders repo.OrderRepository, services repo.ServiceRepository, providers repo.ProviderRepository, users repo.UserRepository, logger *logrus.Logger, emailPub Publisher) *OrderService {
	return &OrderService{
		Orders:    orders,
		Services:  services,
		Providers: providers,
		Users:     users,
		Logger:    logger,
		EmailPub:  emailPub,
	}
}

type CreateOrderInput struct {
	UserID       string
	ServiceID    string
	ProviderID   string
	Price        float64
	Requirements string
	DeliveryDate *time.Time
}

// CreateOrder validates that the service exists and belongs to the claimed
// provider, then stores the order as pending/pending.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*entity.Order, error) {
	svc, err := s.Services.GetByID(in.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != in.ProviderID {
		return nil, ErrProviderMismatch
	}

	o := &entity.Order{
		UserID:        in.UserID,
		ServiceID:     svc.ID,
		ProviderID:    svc.ProviderID,
		Status:        entity.OrderPending,
		Price:         in.Price,
		PaymentStatus: entity.PaymentPending,
		Requirements:  in.Requirements,
		DeliveryDate:  in.DeliveryDate,
	}
	if err := s.Orders.Create(o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOrder loads an order and enforces the access guard.
func (s *OrderService) GetOrder(ctx context.Context, orderID, actingUserID string) (*entity.Order, error) {
	o, err := s.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard(o, actingUserID); err != nil {
		return nil, err
	}
	return o, nil
}

// ListOrders returns the acting user's own orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, actingUserID string, status entity.OrderStatus) ([]*entity.Order, error) {
	if status != "" && !entity.ValidStatus(status) {
		return nil, ErrInvalidTransition
	}
	return s.Orders.ListByUser(actingUserID, status)
}

type UpdateOrderInput struct {
	Status        *entity.OrderStatus
	PaymentStatus *entity.PaymentStatus
	Requirements  *string
	DeliveryDate  *time.Time
}

// UpdateOrder applies allow-listed changes behind the access guard. Status
// and payment-status changes must follow the lifecycle; anything else is
// rejected before storage is touched.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID, actingUserID string, in UpdateOrderInput) (*entity.Order, error) {
	o, err := s.Orders.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.guard(o, actingUserID); err != nil {
		return nil, err
	}

	upd := repo.OrderUpdate{
		Requirements: in.Requirements,
		DeliveryDate: in.DeliveryDate,
	}
	statusChanged := false
	if in.Status != nil && *in.Status != o.Status {
		if !entity.ValidStatus(*in.Status) || !entity.CanTransition(o.Status, *in.Status) {
			return nil, fmt.Errorf("%s -> %s: %w", o.Status, *in.Status, ErrInvalidTransition)
		}
		upd.Status = in.Status
		statusChanged = true
	}
	if in.PaymentStatus != nil && *in.PaymentStatus != o.PaymentStatus {
		if !entity.CanTransitionPayment(o.PaymentStatus, *in.PaymentStatus) {
			return nil, fmt.Errorf("payment %s -> %s: %w", o.PaymentStatus, *in.PaymentStatus, ErrInvalidTransition)
		}
		upd.PaymentStatus = in.PaymentStatus
	}

	updated, err := s.Orders.Update(orderID, upd)
	if err != nil {
		return nil, err
	}

	if statusChanged {
		s.notifyStatusChange(ctx, updated)
	}
	return updated, nil
}

// guard resolves the owning user of the order's provider profile and checks
// the entity-level access rule.
func (s *OrderService) guard(o *entity.Order, actingUserID string) error {
	ownerID := ""
	p, err := s.Providers.GetByID(o.ProviderID)
	if err == nil {
		ownerID = p.UserID
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if !o.CanBeAccessedBy(actingUserID, ownerID) {
		return ErrForbidden
	}
	return nil
}

func (s *OrderService) notifyStatusChange(ctx context.Context, o *entity.Order) {
	if s.EmailPub == nil {
		return
	}
	buyer, err := s.Users.GetByID(o.UserID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("order_id", o.ID).Warn("buyer lookup for notification failed")
		}
		return
	}
	job := mailer.EmailJob{
		To:      buyer.Email,
		Subject: "Order update",
		Text:    fmt.Sprintf("Hi %s, your order %s is now %s.", buyer.Name, o.ID, o.Status),
	}
	if err := s.EmailPub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", o.ID).Warn("email enqueue failed")
	}
}
