package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/internal/repository"
	"intervue-api/internal/service"
	"intervue-api/pkg/errors"
	"intervue-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWebhookKey = "webhook-secret"

// fakeOrderRepo stores payment orders in memory with guarded transitions
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.PaymentOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.PaymentOrder)}
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *domain.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	r.orders[order.OrderID] = &copied
	return nil
}

func (r *fakeOrderRepo) GetByGatewayOrderID(_ context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.GatewayOrderID == gatewayOrderID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, orderID, fromStatus, toStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != fromStatus {
		return false, nil
	}
	order.Status = toStatus
	return true, nil
}

// fakeLedgerRepo appends credits and tracks the balance
type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
}

func (r *fakeLedgerRepo) Balance(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := 0
	for i := range r.entries {
		if r.entries[i].UserID == userID {
			balance += r.entries[i].SignedMinutes()
		}
	}
	return balance, nil
}

func (r *fakeLedgerRepo) AppendCredit(_ context.Context, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLedgerRepo) AppendDebit(_ context.Context, entry *domain.LedgerEntry) error {
	return repository.ErrInsufficientBalance
}

func (r *fakeLedgerRepo) ListByUser(_ context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	return nil, nil
}

type paymentFixture struct {
	service  *Service
	orders   *fakeOrderRepo
	ledger   *fakeLedgerRepo
	gateway  *httptest.Server
	requests int
}

func newPaymentFixture(t *testing.T, gatewayStatus int) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		orders: newFakeOrderRepo(),
		ledger: &fakeLedgerRepo{},
	}

	f.gateway = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests++
		if gatewayStatus != http.StatusOK {
			w.WriteHeader(gatewayStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "gw_order_1"}`))
	}))
	t.Cleanup(f.gateway.Close)

	log := logger.NewNop()
	ledgerService := service.NewLedgerService(f.ledger, log.Logger)
	f.service = &Service{
		gatewayURL: f.gateway.URL,
		gatewayKey: "gw-key",
		webhookKey: testWebhookKey,
		orders:     f.orders,
		ledger:     ledgerService,
		httpClient: f.gateway.Client(),
		logger:     log,
	}
	return f
}

func sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testWebhookKey))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func capturedEvent(gatewayOrderID string) *domain.PaymentWebhookEvent {
	return &domain.PaymentWebhookEvent{
		Event:          "payment.captured",
		GatewayOrderID: gatewayOrderID,
		PaymentID:      "pay_1",
		Signature:      sign(gatewayOrderID, "pay_1"),
	}
}

func TestPaymentService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, http.StatusOK)

	order, err := f.service.CreateOrder(ctx, "u1", "standard")
	require.NoError(t, err)

	assert.NotEmpty(t, order.OrderID)
	assert.Equal(t, "gw_order_1", order.GatewayOrderID)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, 90, order.Minutes)
	assert.Equal(t, int64(119900), order.Amount)
	assert.Equal(t, domain.PaymentPending, order.Status)
}

func TestPaymentService_CreateOrderUnknownPlan(t *testing.T) {
	f := newPaymentFixture(t, http.StatusOK)

	_, err := f.service.CreateOrder(context.Background(), "u1", "platinum")
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
	assert.Equal(t, 0, f.requests, "no gateway call for an unknown plan")
}

func TestPaymentService_CreateOrderGatewayDown(t *testing.T) {
	f := newPaymentFixture(t, http.StatusBadGateway)

	_, err := f.service.CreateOrder(context.Background(), "u1", "starter")
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeServiceUnavailable, appErr.Code,
		"a dead gateway is surfaced, never a fabricated order")
	assert.Empty(t, f.orders.orders, "no pending order is recorded")
}

func TestPaymentService_WebhookConfirmsAndCredits(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, http.StatusOK)

	order, err := f.service.CreateOrder(ctx, "u1", "starter")
	require.NoError(t, err)

	require.NoError(t, f.service.HandleWebhook(ctx, capturedEvent(order.GatewayOrderID)))

	stored, err := f.orders.GetByGatewayOrderID(ctx, order.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentConfirmed, stored.Status)

	balance, err := f.ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, balance, "the starter plan's minutes were credited")

	require.Len(t, f.ledger.entries, 1)
	assert.Equal(t, domain.CategoryPurchase, f.ledger.entries[0].Category)
	assert.Equal(t, order.OrderID, f.ledger.entries[0].RelatedID)
}

func TestPaymentService_WebhookReplayCreditsOnce(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, http.StatusOK)

	order, err := f.service.CreateOrder(ctx, "u1", "starter")
	require.NoError(t, err)

	event := capturedEvent(order.GatewayOrderID)
	require.NoError(t, f.service.HandleWebhook(ctx, event))
	require.NoError(t, f.service.HandleWebhook(ctx, event), "replays are acknowledged")
	require.NoError(t, f.service.HandleWebhook(ctx, event))

	balance, err := f.ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, balance, "replayed webhooks never double-credit")
	assert.Len(t, f.ledger.entries, 1)
}

func TestPaymentService_WebhookBadSignatureRejected(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, http.StatusOK)

	order, err := f.service.CreateOrder(ctx, "u1", "starter")
	require.NoError(t, err)

	event := capturedEvent(order.GatewayOrderID)
	event.Signature = "deadbeef"

	err = f.service.HandleWebhook(ctx, event)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeAuthentication, appErr.Type)

	stored, _ := f.orders.GetByGatewayOrderID(ctx, order.GatewayOrderID)
	assert.Equal(t, domain.PaymentPending, stored.Status, "a forged webhook changes nothing")
}

func TestPaymentService_WebhookUnknownOrder(t *testing.T) {
	f := newPaymentFixture(t, http.StatusOK)

	err := f.service.HandleWebhook(context.Background(), capturedEvent("gw_missing"))
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorTypeNotFound, appErr.Type)
}

func TestPaymentService_WebhookFailureMarksOrderFailed(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, http.StatusOK)

	order, err := f.service.CreateOrder(ctx, "u1", "starter")
	require.NoError(t, err)

	event := capturedEvent(order.GatewayOrderID)
	event.Event = "payment.failed"

	require.NoError(t, f.service.HandleWebhook(ctx, event))

	stored, _ := f.orders.GetByGatewayOrderID(ctx, order.GatewayOrderID)
	assert.Equal(t, domain.PaymentFailed, stored.Status)
	assert.Empty(t, f.ledger.entries, "a failed payment credits nothing")
}
