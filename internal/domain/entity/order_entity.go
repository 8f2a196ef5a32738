package entity

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in-progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Order is a transaction between a buyer (UserID) and a provider for one
// service. ProviderID must reference the provider owning ServiceID at
// creation time; this is not re-validated afterwards.
type Order struct {
	ID            string
	UserID        string
	ServiceID     string
	ProviderID    string
	Status        OrderStatus
	Price         float64
	PaymentStatus PaymentStatus
	Requirements  string
	DeliveryDate  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// orderTransitions is the forward path of the order lifecycle. Cancellation
// is handled separately: it is reachable from any non-terminal status.
var orderTransitions = map[OrderStatus]OrderStatus{
	OrderPending:    OrderConfirmed,
	OrderConfirmed:  OrderInProgress,
	OrderInProgress: OrderCompleted,
}

// IsTerminal reports whether no further status change is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from -> to.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return false
	}
	if to == OrderCancelled {
		return !from.IsTerminal()
	}
	return orderTransitions[from] == to
}

// CanTransitionPayment reports whether the payment status may move from -> to.
func CanTransitionPayment(from, to PaymentStatus) bool {
	switch {
	case from == PaymentPending && to == PaymentPaid:
		return true
	case from == PaymentPaid && to == PaymentRefunded:
		return true
	}
	return false
}

// CanBeAccessedBy is the order access guard: true iff the acting user is the
// buyer or the user owning the order's provider profile. providerOwnerID is
// the resolved owning user of o.ProviderID; callers resolve it before the
// check so the guard itself stays free of I/O. Both reads and mutations use
// this same owning-user comparison.
func (o *Order) CanBeAccessedBy(actingUserID, providerOwnerID string) bool {
	if actingUserID == "" {
		return false
	}
	if actingUserID == o.UserID {
		return true
	}
	return providerOwnerID != "" && actingUserID == providerOwnerID
}
