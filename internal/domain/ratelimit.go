package domain

import (
	"time"
)

// RateLimitPolicy is an immutable fixed-window budget for one request scope.
// Policies are defined once at process start.
type RateLimitPolicy struct {
	Scope         string        `json:"scope"`
	Window        time.Duration `json:"window"`
	MaxRequests   int           `json:"max_requests"`
	SkipOnSuccess bool          `json:"skip_on_success"` // only failed requests count (auth)
}

// Named rate-limit scopes
const (
	ScopeAuth      = "auth"
	ScopeAPI       = "api"
	ScopeUpload    = "upload"
	ScopeInterview = "interview"
	ScopeAdmin     = "admin"
	ScopePayment   = "payment"
)

// DefaultPolicies returns the budgets enforced per scope
func DefaultPolicies() map[string]RateLimitPolicy {
	return map[string]RateLimitPolicy{
		ScopeAuth:      {Scope: ScopeAuth, Window: 15 * time.Minute, MaxRequests: 5, SkipOnSuccess: true},
		ScopeAPI:       {Scope: ScopeAPI, Window: 15 * time.Minute, MaxRequests: 100},
		ScopeUpload:    {Scope: ScopeUpload, Window: time.Minute, MaxRequests: 10},
		ScopeInterview: {Scope: ScopeInterview, Window: time.Minute, MaxRequests: 5},
		ScopeAdmin:     {Scope: ScopeAdmin, Window: time.Minute, MaxRequests: 30},
		ScopePayment:   {Scope: ScopePayment, Window: time.Minute, MaxRequests: 3},
	}
}

// RateLimitDecision is the outcome of an admission check
type RateLimitDecision struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}
