package models

import (
	"time"
)

// LinkedAccount is a bank account linked through the provider and owned by one user.
type LinkedAccount struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	ProviderAccountID string    `json:"account_id"`
	Name              string    `json:"account_name"`
	Type              string    `json:"account_type"`
	Subtype           string    `json:"account_subtype,omitempty"`
	Mask              string    `json:"account_number_masked,omitempty"`
	Balance           float64   `json:"balance"`
	AvailableBalance  float64   `json:"available_balance"`
	Currency          string    `json:"currency"`
	AccessToken       string    `json:"-"` // Never expose in JSON
	LastSyncedAt      time.Time `json:"last_synced_at"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ProviderAccount is an account as returned by the aggregation provider.
type ProviderAccount struct {
	ProviderAccountID string
	Name              string
	Type              string
	Subtype           string
	Mask              string
	CurrentBalance    *float64
	AvailableBalance  *float64
	CurrencyCode      string
}

// ProviderTransaction is a transaction as returned by the aggregation provider.
// Amount follows the provider convention: positive means money out.
type ProviderTransaction struct {
	ProviderTransactionID string
	ProviderAccountID     string
	Amount                float64
	Name                  string
	MerchantName          string
	Date                  string
	Category              []string
}

// LinkToken is handed to the client to open the provider's link widget.
type LinkToken struct {
	Token      string    `json:"linkToken"`
	Expiration time.Time `json:"expiration"`
}

// ImportSummary is the best-effort result of a link or sync run.
type ImportSummary struct {
	SavedAccounts        []LinkedAccount `json:"savedAccounts"`
	TransactionsImported int             `json:"transactionsImported"`
	UserID               string          `json:"userId"`
}

type LinkTokenRequest struct {
	UserID string `json:"userId"`
}

type ExchangeTokenRequest struct {
	PublicToken string `json:"publicToken" binding:"required"`
}
