package redis

import (
	"fmt"
	"time"
)

// Cache key patterns. Analytics and history keys carry every query parameter
// that changes the payload so each variant caches independently; invalidation
// clears all variants for a user via the prefix patterns below.
const (
	KeyAnalytics    = "analytics:%s"           // analytics:{userID}
	KeyHistory      = "history:%s:%d:%d:%s:%s" // history:{userID}:{page}:{limit}:{type}:{status}
	KeyRateLimit    = "ratelimit:%s:%s"        // ratelimit:{policy}:{fingerprint}
	KeyEvalBudget   = "eval:budget"            // orchestrator's internal model-call counter
	KeyPaymentOrder = "payment:order:%s"       // payment:order:{orderID}
)

// TTL constants
const (
	TTLAnalytics = 5 * time.Minute // per-user analytics aggregation
	TTLHistory   = 3 * time.Minute // interview history pages
)

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyAnalytics builds the cache key for a user's analytics aggregation
func (kb *KeyBuilder) KeyAnalytics(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyAnalytics, userID))
}

// KeyAnalyticsPattern matches the analytics entry for a user. There is one
// entry per user and no delimiter after the id, so this is the exact key; a
// trailing wildcard would also clear users whose id shares the prefix.
func (kb *KeyBuilder) KeyAnalyticsPattern(userID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyAnalytics, userID))
}

// KeyHistory builds the cache key for one page of a user's interview history
func (kb *KeyBuilder) KeyHistory(userID string, page, limit int, interviewType, status string) string {
	return kb.BuildKey(fmt.Sprintf(KeyHistory, userID, page, limit, interviewType, status))
}

// KeyHistoryPattern matches every cached history page for a user regardless
// of pagination or filter suffix
func (kb *KeyBuilder) KeyHistoryPattern(userID string) string {
	return kb.BuildKey(fmt.Sprintf("history:%s:", userID)) + "*"
}

// KeyRateLimit builds the counter key for a policy/fingerprint pair
func (kb *KeyBuilder) KeyRateLimit(policy, fingerprint string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRateLimit, policy, fingerprint))
}

// KeyEvalBudget returns the orchestrator's rolling model-call counter key
func (kb *KeyBuilder) KeyEvalBudget() string {
	return kb.BuildKey(KeyEvalBudget)
}

// KeyPaymentOrder builds the idempotency key for a payment order
func (kb *KeyBuilder) KeyPaymentOrder(orderID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyPaymentOrder, orderID))
}

// KeyCustom builds an arbitrary prefixed key
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
