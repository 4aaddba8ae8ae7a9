package models

import "time"

type Transaction struct {
	ID                    string    `json:"id"`
	AccountID             string    `json:"account_id"`
	ProviderTransactionID string    `json:"transaction_id"`
	Amount                float64   `json:"amount"`
	Description           string    `json:"description"`
	MerchantName          string    `json:"merchant_name,omitempty"`
	Date                  string    `json:"date"`
	PostedDate            string    `json:"posted_date"`
	Category              string    `json:"category"`
	Subcategory           string    `json:"subcategory,omitempty"`
	IsRecurring           bool      `json:"is_recurring"`
	IsManual              bool      `json:"is_manual"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	// Joined from the owning account, not stored on the row.
	AccountName string `json:"account_name"`
	AccountType string `json:"account_type"`
}

// TransactionFilter drives Transaction Store queries. Nil pointers mean "no filter".
type TransactionFilter struct {
	Limit       int
	Offset      int
	StartDate   string
	EndDate     string
	Search      string
	Category    string
	IsRecurring *bool
	IsManual    *bool
}

// TransactionFlag names one of the boolean columns a client may toggle.
type TransactionFlag string

const (
	FlagRecurring TransactionFlag = "recurring"
	FlagManual    TransactionFlag = "manual"
)

type UpdateCategoryRequest struct {
	Category    string `json:"category" binding:"required"`
	Subcategory string `json:"subcategory"`
}

type BulkUpdateCategoryRequest struct {
	TransactionIDs []string `json:"transactionIds"`
	Category       string   `json:"category" binding:"required"`
	Subcategory    string   `json:"subcategory"`
}

type UpdateRecurringRequest struct {
	IsRecurring *bool `json:"isRecurring" binding:"required"`
}

type UpdateManualRequest struct {
	IsManual *bool `json:"isManual" binding:"required"`
}
