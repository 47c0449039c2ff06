package domain

import (
	"time"
)

// Payment order statuses
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
	PaymentFailed    = "failed"
)

// PaymentPlan maps a purchasable plan to its minute allowance
type PaymentPlan struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Minutes  int    `json:"minutes"`
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
}

// PaymentPlans is the fixed catalog offered at checkout
var PaymentPlans = []PaymentPlan{
	{ID: "starter", Name: "Starter", Minutes: 30, Amount: 49900, Currency: "INR"},
	{ID: "standard", Name: "Standard", Minutes: 90, Amount: 119900, Currency: "INR"},
	{ID: "pro", Name: "Pro", Minutes: 240, Amount: 249900, Currency: "INR"},
}

// PlanByID looks up a plan in the catalog
func PlanByID(id string) (PaymentPlan, bool) {
	for _, p := range PaymentPlans {
		if p.ID == id {
			return p, true
		}
	}
	return PaymentPlan{}, false
}

// PaymentOrder is a gateway order created for a plan purchase
type PaymentOrder struct {
	OrderID        string    `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	UserID         string    `json:"user_id"`
	PlanID         string    `json:"plan_id"`
	Minutes        int       `json:"minutes"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateOrderRequest is the checkout payload
type CreateOrderRequest struct {
	PlanID string `json:"plan_id"`
}

// PaymentWebhookEvent is the gateway's confirmation callback payload
type PaymentWebhookEvent struct {
	Event          string `json:"event"`
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
	Signature      string `json:"signature"`
}
