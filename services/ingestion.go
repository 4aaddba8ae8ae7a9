package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"
)

const DefaultImportWindowDays = 30

type BankProvider interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken string, itemID string, err error)
	GetAccounts(ctx context.Context, accessToken string) ([]models.ProviderAccount, error)
	GetTransactions(ctx context.Context, accessToken, accountID, start, end string) ([]models.ProviderTransaction, error)
}

type AccountSaver interface {
	UpsertAccount(ctx context.Context, userID string, account models.ProviderAccount, credential string) (*models.LinkedAccount, error)
	ListSyncTargets(ctx context.Context, userID string) ([]models.LinkedAccount, error)
}

type TransactionSaver interface {
	BulkInsert(ctx context.Context, accountID string, txns []models.ProviderTransaction) (int, error)
}

// Orchestrator links a provider item and imports its accounts and recent transactions.
// Per-account failures are logged and skipped; only token exchange and the account listing abort a run.
type Orchestrator struct {
	provider     BankProvider
	accounts     AccountSaver
	transactions TransactionSaver
	windowDays   int
	now          func() time.Time
}

func NewOrchestrator(provider BankProvider, accounts AccountSaver, transactions TransactionSaver, windowDays int) *Orchestrator {
	if windowDays <= 0 {
		windowDays = DefaultImportWindowDays
	}
	return &Orchestrator{
		provider:     provider,
		accounts:     accounts,
		transactions: transactions,
		windowDays:   windowDays,
		now:          time.Now,
	}
}

func (o *Orchestrator) LinkAndImport(ctx context.Context, userID, publicToken string) (*models.ImportSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationErrorf("user id is required")
	}
	if strings.TrimSpace(publicToken) == "" {
		return nil, validationErrorf("publicToken is required")
	}

	accessToken, itemID, err := o.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		ingestionFailures.WithLabelValues("exchange").Inc()
		return nil, err
	}
	utils.LogBankingAction("item linked", itemID, userID)

	accounts, err := o.provider.GetAccounts(ctx, accessToken)
	if err != nil {
		ingestionFailures.WithLabelValues("accounts").Inc()
		return nil, err
	}

	summary := &models.ImportSummary{UserID: userID, SavedAccounts: []models.LinkedAccount{}}
	o.importAccounts(ctx, userID, accessToken, accounts, summary)
	return summary, nil
}

// Sync re-imports every active account from its stored credential. Accounts the user unlinked stay unlinked.
func (o *Orchestrator) Sync(ctx context.Context, userID string) (*models.ImportSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationErrorf("user id is required")
	}

	targets, err := o.accounts.ListSyncTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sync targets: %w", err)
	}

	// accounts of one item share a credential
	var credentials []string
	active := make(map[string]map[string]bool)
	for _, t := range targets {
		if active[t.AccessToken] == nil {
			active[t.AccessToken] = make(map[string]bool)
			credentials = append(credentials, t.AccessToken)
		}
		active[t.AccessToken][t.ProviderAccountID] = true
	}

	summary := &models.ImportSummary{UserID: userID, SavedAccounts: []models.LinkedAccount{}}
	var failures []error

	for _, credential := range credentials {
		accounts, err := o.provider.GetAccounts(ctx, credential)
		if err != nil {
			ingestionFailures.WithLabelValues("accounts").Inc()
			utils.LogBankingFailure("sync accounts fetch failed", "", userID, err)
			failures = append(failures, err)
			continue
		}

		var still []models.ProviderAccount
		for _, a := range accounts {
			if active[credential][a.ProviderAccountID] {
				still = append(still, a)
			}
		}
		o.importAccounts(ctx, userID, credential, still, summary)
	}

	if len(credentials) > 0 && len(failures) == len(credentials) {
		return nil, errors.Join(failures...)
	}
	return summary, nil
}

func (o *Orchestrator) importAccounts(ctx context.Context, userID, accessToken string, accounts []models.ProviderAccount, summary *models.ImportSummary) {
	var saved []models.LinkedAccount
	for _, a := range accounts {
		acc, err := o.accounts.UpsertAccount(ctx, userID, a, accessToken)
		if err != nil {
			ingestionFailures.WithLabelValues("save_account").Inc()
			utils.LogBankingFailure("account save failed", a.ProviderAccountID, userID, err)
			continue
		}
		accountsLinked.Inc()
		saved = append(saved, *acc)
	}

	now := o.now()
	start := now.AddDate(0, 0, -o.windowDays).Format(dateLayout)
	end := now.Format(dateLayout)

	for _, acc := range saved {
		txns, err := o.provider.GetTransactions(ctx, accessToken, acc.ProviderAccountID, start, end)
		if err != nil {
			ingestionFailures.WithLabelValues("fetch_transactions").Inc()
			utils.LogBankingFailure("transaction fetch failed", acc.ProviderAccountID, userID, err)
			continue
		}

		created, err := o.transactions.BulkInsert(ctx, acc.ID, txns)
		if err != nil {
			ingestionFailures.WithLabelValues("save_transactions").Inc()
			utils.LogBankingFailure("transaction import failed", acc.ProviderAccountID, userID, err)
			continue
		}

		transactionsImported.Add(float64(created))
		summary.TransactionsImported += created
	}

	summary.SavedAccounts = append(summary.SavedAccounts, saved...)
	utils.LogBankingAction(fmt.Sprintf("imported %d accounts", len(saved)), "", userID)
}
