package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to confirmed", OrderPending, OrderConfirmed, true},
		{"confirmed to in-progress", OrderConfirmed, OrderInProgress, true},
		{"in-progress to completed", OrderInProgress, OrderCompleted, true},
		{"pending to cancelled", OrderPending, OrderCancelled, true},
		{"in-progress to cancelled", OrderInProgress, OrderCancelled, true},
		{"skip a step", OrderPending, OrderInProgress, false},
		{"backwards", OrderConfirmed, OrderPending, false},
		{"completed is terminal", OrderCompleted, OrderCancelled, false},
		{"cancelled is terminal", OrderCancelled, OrderConfirmed, false},
		{"no self transition", OrderPending, OrderPending, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestCanTransitionPayment(t *testing.T) {
	assert.True(t, CanTransitionPayment(PaymentPending, PaymentPaid))
	assert.True(t, CanTransitionPayment(PaymentPaid, PaymentRefunded))
	assert.False(t, CanTransitionPayment(PaymentPending, PaymentRefunded))
	assert.False(t, CanTransitionPayment(PaymentRefunded, PaymentPaid))
	assert.False(t, CanTransitionPayment(PaymentPaid, PaymentPending))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(OrderPending))
	assert.True(t, ValidStatus(OrderCancelled))
	assert.False(t, ValidStatus(OrderStatus("shipped")))
	assert.False(t, ValidStatus(OrderStatus("")))
}

func TestOrderCanBeAccessedBy(t *testing.T) {
	o := &Order{UserID: "buyer", ProviderID: "prov"}

	cases := []struct {
		name          string
		actingUserID  string
		providerOwner string
		want          bool
	}{
		{"buyer", "buyer", "owner", true},
		{"provider owner", "owner", "owner", true},
		{"unrelated user", "stranger", "owner", false},
		{"empty acting user", "", "owner", false},
		{"provider id is not an owner id", "prov", "owner", false},
		{"no resolved owner", "owner", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, o.CanBeAccessedBy(tc.actingUserID, tc.providerOwner))
		})
	}
}
