package domain

import (
	"time"
)

// Ledger entry types
const (
	EntryCredit = "credit"
	EntryDebit  = "debit"
)

// Ledger entry categories
const (
	CategoryPurchase        = "purchase"
	CategorySignupBonus     = "signup_bonus"
	CategoryInterviewUsage  = "interview_usage"
	CategoryAdminAdjustment = "admin_adjustment"
	CategoryRefund          = "refund"
)

// LedgerEntry is one immutable row of the minute ledger. Entries are only
// ever appended; a user's balance is the signed sum of their entries and
// BalanceAfter records that sum as of this entry.
type LedgerEntry struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Minutes       int       `json:"minutes"`
	BalanceAfter  int       `json:"balance_after"`
	RelatedID     string    `json:"related_id,omitempty"`
	Description   string    `json:"description,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// SignedMinutes returns the entry's contribution to the running balance
func (e *LedgerEntry) SignedMinutes() int {
	if e.Type == EntryDebit {
		return -e.Minutes
	}
	return e.Minutes
}

// WalletBalance is the response for balance queries
type WalletBalance struct {
	UserID  string `json:"user_id"`
	Minutes int    `json:"minutes"`
}

// AdjustBalanceRequest is the admin payload for manual credits
type AdjustBalanceRequest struct {
	UserID      string `json:"user_id"`
	Minutes     int    `json:"minutes"`
	Description string `json:"description"`
}
