package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/internal/repository"
	"intervue-api/internal/service"
	"intervue-api/pkg/errors"
	"intervue-api/pkg/logger"

	"github.com/google/uuid"
)

const gatewayTimeout = 15 * time.Second

// Service implements the PaymentService interface against a Razorpay-style
// order API. Minutes are credited to the wallet only after a verified,
// not-yet-processed webhook confirms payment.
type Service struct {
	gatewayURL string
	gatewayKey string
	webhookKey string
	orders     repository.PaymentRepository
	ledger     *service.LedgerService
	httpClient *http.Client
	logger     *logger.Logger
}

// NewService creates a new payment service
func NewService(gatewayURL, gatewayKey, webhookKey string, orders repository.PaymentRepository, ledger *service.LedgerService, logger *logger.Logger) service.PaymentService {
	return &Service{
		gatewayURL: gatewayURL,
		gatewayKey: gatewayKey,
		webhookKey: webhookKey,
		orders:     orders,
		ledger:     ledger,
		httpClient: &http.Client{Timeout: gatewayTimeout},
		logger:     logger,
	}
}

// gatewayOrderRequest is the order creation payload sent to the gateway
type gatewayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// gatewayOrderResponse is the gateway's order creation response
type gatewayOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder creates a gateway order for a plan purchase and records it as
// pending.
func (s *Service) CreateOrder(ctx context.Context, userID, planID string) (*domain.PaymentOrder, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user id is required", nil)
	}

	plan, ok := domain.PlanByID(planID)
	if !ok {
		return nil, errors.NewValidationError("unknown plan", map[string]interface{}{"plan_id": planID})
	}

	orderID := uuid.NewString()
	gatewayOrderID, err := s.createGatewayOrder(ctx, orderID, plan)
	if err != nil {
		s.logger.WithError(err).Error("Gateway order creation failed")
		return nil, errors.NewUnavailableError("Payment gateway is unavailable", err)
	}

	order := &domain.PaymentOrder{
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		UserID:         userID,
		PlanID:         plan.ID,
		Minutes:        plan.Minutes,
		Amount:         plan.Amount,
		Currency:       plan.Currency,
		Status:         domain.PaymentPending,
		CreatedAt:      time.Now(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, errors.NewInternalError("Failed to record payment order", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"order_id": order.OrderID,
		"plan_id":  plan.ID,
		"user_id":  userID,
	}).Info("Payment order created")

	return order, nil
}

func (s *Service) createGatewayOrder(ctx context.Context, receipt string, plan domain.PaymentPlan) (string, error) {
	body, err := json.Marshal(gatewayOrderRequest{
		Amount:   plan.Amount,
		Currency: plan.Currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.gatewayKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var orderResp gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&orderResp); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if orderResp.ID == "" {
		return "", fmt.Errorf("gateway response has no order id")
	}

	return orderResp.ID, nil
}

// HandleWebhook processes a gateway confirmation callback. Replayed webhooks
// are acknowledged without crediting twice: the pending-to-confirmed status
// transition only succeeds once.
func (s *Service) HandleWebhook(ctx context.Context, event *domain.PaymentWebhookEvent) error {
	if !s.verifySignature(event) {
		s.logger.WithField("gateway_order_id", event.GatewayOrderID).Warn("Webhook signature verification failed")
		return errors.NewAuthenticationError("Invalid webhook signature")
	}

	order, err := s.orders.GetByGatewayOrderID(ctx, event.GatewayOrderID)
	if err != nil {
		return errors.NewInternalError("Failed to load payment order", err)
	}
	if order == nil {
		return errors.NewNotFoundError("payment order")
	}

	switch event.Event {
	case "payment.captured":
		return s.confirmOrder(ctx, order, event.PaymentID)
	case "payment.failed":
		if _, err := s.orders.UpdateStatus(ctx, order.OrderID, domain.PaymentPending, domain.PaymentFailed); err != nil {
			return errors.NewInternalError("Failed to mark order failed", err)
		}
		return nil
	default:
		s.logger.WithField("event", event.Event).Debug("Ignoring unhandled webhook event")
		return nil
	}
}

func (s *Service) confirmOrder(ctx context.Context, order *domain.PaymentOrder, paymentID string) error {
	changed, err := s.orders.UpdateStatus(ctx, order.OrderID, domain.PaymentPending, domain.PaymentConfirmed)
	if err != nil {
		return errors.NewInternalError("Failed to confirm payment order", err)
	}
	if !changed {
		// Already processed, acknowledge without crediting again.
		s.logger.WithField("order_id", order.OrderID).Debug("Webhook replay ignored")
		return nil
	}

	description := fmt.Sprintf("Purchase of %s plan", order.PlanID)
	if _, err := s.ledger.AddCredit(ctx, order.UserID, order.Minutes, domain.CategoryPurchase, description, order.OrderID); err != nil {
		// The order is confirmed but the credit failed. Surface the error so
		// the gateway retries the webhook, and rely on operator review for
		// the stuck confirmed order.
		s.logger.WithError(err).WithField("order_id", order.OrderID).Error("Failed to credit purchased minutes")
		return errors.NewInternalError("Failed to credit purchased minutes", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"order_id":   order.OrderID,
		"payment_id": paymentID,
		"minutes":    order.Minutes,
	}).Info("Payment confirmed and minutes credited")

	return nil
}

// verifySignature checks the webhook HMAC. The gateway signs
// "<gateway_order_id>|<payment_id>" with the shared webhook key.
func (s *Service) verifySignature(event *domain.PaymentWebhookEvent) bool {
	if s.webhookKey == "" || event.Signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.webhookKey))
	mac.Write([]byte(event.GatewayOrderID + "|" + event.PaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(event.Signature))
}
