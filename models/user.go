package models

import "time"

// UserProfile mirrors an authenticated Supabase user inside this database.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthUser is what a verified bearer token resolves to.
type AuthUser struct {
	ID    string
	Email string
}

// Event is pushed to a user's websocket sessions after a change.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventTransactionsImported = "transactions_imported"
	EventTransactionsUpdated  = "transactions_updated"
	EventBudgetsChanged       = "budgets_changed"
	EventAccountsChanged      = "accounts_changed"
)
