package application_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/khadamatapp/marketplace-api/internal/application"
	"github.com/khadamatapp/marketplace-api/internal/domain/entity"
	"github.com/khadamatapp/marketplace-api/pkg/mailer"
)

type orderFixture struct {
	svc       *app.OrderService
	users     *fakeUserRepo
	pub       *fakePublisher
	buyerID   string
	ownerID   string
	provID    string
	serviceID string
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	users := newFakeUserRepo()
	providers := newFakeProviderRepo()
	services := newFakeServiceRepo()
	orders := newFakeOrderRepo()
	pub := &fakePublisher{}

	buyer := &entity.User{Name: "Buyer", Email: "buyer@example.com"}
	require.NoError(t, users.Create(buyer))
	owner := &entity.User{Name: "Owner", Email: "owner@example.com", UserType: entity.UserTypeProvider}
	require.NoError(t, users.Create(owner))

	p := &entity.Provider{UserID: owner.ID, Name: "Studio"}
	require.NoError(t, providers.Create(p))
	s := &entity.Service{ProviderID: p.ID, Title: "Logo design"}
	require.NoError(t, services.Create(s))

	return &orderFixture{
		svc:       app.NewOrderService(orders, services, providers, users, nil, pub),
		users:     users,
		pub:       pub,
		buyerID:   buyer.ID,
		ownerID:   owner.ID,
		provID:    p.ID,
		serviceID: s.ID,
	}
}

func (f *orderFixture) create(t *testing.T) *entity.Order {
	t.Helper()
	o, err := f.svc.CreateOrder(context.Background(), app.CreateOrderInput{
		UserID:     f.buyerID,
		ServiceID:  f.serviceID,
		ProviderID: f.provID,
		Price:      250,
	})
	require.NoError(t, err)
	return o
}

func TestCreateOrder(t *testing.T) {
	f := newOrderFixture(t)

	o := f.create(t)
	assert.Equal(t, entity.OrderPending, o.Status)
	assert.Equal(t, entity.PaymentPending, o.PaymentStatus)
	assert.Equal(t, f.provID, o.ProviderID)
}

func TestCreateOrder_ProviderMismatch(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), app.CreateOrderInput{
		UserID:     f.buyerID,
		ServiceID:  f.serviceID,
		ProviderID: "prov-other",
	})
	assert.ErrorIs(t, err, app.ErrProviderMismatch)
}

func TestGetOrder_AccessGuard(t *testing.T) {
	f := newOrderFixture(t)
	o := f.create(t)

	// Buyer and provider owner both read.
	_, err := f.svc.GetOrder(context.Background(), o.ID, f.buyerID)
	assert.NoError(t, err)
	_, err = f.svc.GetOrder(context.Background(), o.ID, f.ownerID)
	assert.NoError(t, err)

	// Anyone else does not.
	_, err = f.svc.GetOrder(context.Background(), o.ID, "stranger")
	assert.ErrorIs(t, err, app.ErrForbidden)
	_, err = f.svc.GetOrder(context.Background(), o.ID, "")
	assert.ErrorIs(t, err, app.ErrForbidden)
}

func TestUpdateOrder_GuardAppliesToWrites(t *testing.T) {
	f := newOrderFixture(t)
	o := f.create(t)

	confirmed := entity.OrderConfirmed
	_, err := f.svc.UpdateOrder(context.Background(), o.ID, "stranger", app.UpdateOrderInput{Status: &confirmed})
	assert.ErrorIs(t, err, app.ErrForbidden)

	updated, err := f.svc.UpdateOrder(context.Background(), o.ID, f.ownerID, app.UpdateOrderInput{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderConfirmed, updated.Status)
}

func TestUpdateOrder_LifecycleEnforced(t *testing.T) {
	f := newOrderFixture(t)
	o := f.create(t)

	completed := entity.OrderCompleted
	_, err := f.svc.UpdateOrder(context.Background(), o.ID, f.ownerID, app.UpdateOrderInput{Status: &completed})
	assert.ErrorIs(t, err, app.ErrInvalidTransition)

	cancelled := entity.OrderCancelled
	_, err = f.svc.UpdateOrder(context.Background(), o.ID, f.buyerID, app.UpdateOrderInput{Status: &cancelled})
	require.NoError(t, err)

	// Terminal orders stay put.
	confirmed := entity.OrderConfirmed
	_, err = f.svc.UpdateOrder(context.Background(), o.ID, f.buyerID, app.UpdateOrderInput{Status: &confirmed})
	assert.ErrorIs(t, err, app.ErrInvalidTransition)
}

func TestUpdateOrder_PaymentLifecycle(t *testing.T) {
	f := newOrderFixture(t)
	o := f.create(t)

	refunded := entity.PaymentRefunded
	_, err := f.svc.UpdateOrder(context.Background(), o.ID, f.buyerID, app.UpdateOrderInput{PaymentStatus: &refunded})
	assert.ErrorIs(t, err, app.ErrInvalidTransition)

	paid := entity.PaymentPaid
	updated, err := f.svc.UpdateOrder(context.Background(), o.ID, f.buyerID, app.UpdateOrderInput{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentPaid, updated.PaymentStatus)
}

func TestUpdateOrder_StatusChangeQueuesEmail(t *testing.T) {
	f := newOrderFixture(t)
	o := f.create(t)

	confirmed := entity.OrderConfirmed
	_, err := f.svc.UpdateOrder(context.Background(), o.ID, f.ownerID, app.UpdateOrderInput{Status: &confirmed})
	require.NoError(t, err)

	require.Len(t, f.pub.published, 1)
	var job mailer.EmailJob
	require.NoError(t, json.Unmarshal(f.pub.published[0], &job))
	assert.Equal(t, "buyer@example.com", job.To)
	assert.Contains(t, job.Text, "confirmed")

	// Requirements-only updates do not notify.
	reqs := "new requirements"
	_, err = f.svc.UpdateOrder(context.Background(), o.ID, f.buyerID, app.UpdateOrderInput{Requirements: &reqs})
	require.NoError(t, err)
	assert.Len(t, f.pub.published, 1)
}

func TestListOrders_OwnOrdersOnly(t *testing.T) {
	f := newOrderFixture(t)
	f.create(t)
	f.create(t)

	mine, err := f.svc.ListOrders(context.Background(), f.buyerID, "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	others, err := f.svc.ListOrders(context.Background(), f.ownerID, "")
	require.NoError(t, err)
	assert.Empty(t, others)
}
