package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/google/uuid"
)

const defaultCurrency = "CAD"

const accountColumns = `id, user_id, account_id, account_name, account_type,
	COALESCE(account_subtype, ''), COALESCE(account_number_masked, ''),
	balance, available_balance, currency, last_synced_at, is_active, created_at, updated_at`

// BankingService is the Account Store: linked accounts keyed by (user, provider account id).
type BankingService struct {
	db     *sql.DB
	cipher *utils.Cipher
}

func NewBankingService(db *sql.DB, cipher *utils.Cipher) *BankingService {
	return &BankingService{db: db, cipher: cipher}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner, extra ...interface{}) (models.LinkedAccount, error) {
	var acc models.LinkedAccount
	dest := []interface{}{
		&acc.ID, &acc.UserID, &acc.ProviderAccountID, &acc.Name, &acc.Type,
		&acc.Subtype, &acc.Mask,
		&acc.Balance, &acc.AvailableBalance, &acc.Currency, &acc.LastSyncedAt, &acc.IsActive,
		&acc.CreatedAt, &acc.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return acc, err
}

// UpsertAccount inserts the account or, when (user, provider account id) exists, refreshes its
// name, balances, credential and sync time. Repeated calls with the same input leave one row.
func (s *BankingService) UpsertAccount(ctx context.Context, userID string, account models.ProviderAccount, credential string) (*models.LinkedAccount, error) {
	if userID == "" || account.ProviderAccountID == "" {
		return nil, validationErrorf("user id and provider account id are required")
	}

	sealed, err := s.cipher.Encrypt([]byte(credential))
	if err != nil {
		return nil, fmt.Errorf("failed to seal credential: %w", err)
	}

	balance := 0.0
	if account.CurrentBalance != nil {
		balance = *account.CurrentBalance
	} else if account.AvailableBalance != nil {
		balance = *account.AvailableBalance
	}

	available := 0.0
	if account.AvailableBalance != nil {
		available = *account.AvailableBalance
	}

	currency := account.CurrencyCode
	if currency == "" {
		currency = defaultCurrency
	}

	query := `
		INSERT INTO user_accounts (
			id, user_id, account_id, account_name, account_type, account_subtype,
			account_number_masked, balance, available_balance, currency, access_token,
			last_synced_at, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), TRUE, NOW(), NOW())
		ON CONFLICT (user_id, account_id)
		DO UPDATE SET
			account_name = EXCLUDED.account_name,
			balance = EXCLUDED.balance,
			available_balance = EXCLUDED.available_balance,
			access_token = EXCLUDED.access_token,
			last_synced_at = EXCLUDED.last_synced_at,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING ` + accountColumns

	saved, err := scanAccount(s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		userID,
		account.ProviderAccountID,
		account.Name,
		account.Type,
		nullString(account.Subtype),
		nullString(account.Mask),
		balance,
		available,
		currency,
		sealed,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	return &saved, nil
}

// ListActiveAccounts returns the user's active accounts, newest first.
func (s *BankingService) ListActiveAccounts(ctx context.Context, userID string) ([]models.LinkedAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM user_accounts
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.LinkedAccount{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

// ListSyncTargets returns active accounts with their decrypted provider credential.
func (s *BankingService) ListSyncTargets(ctx context.Context, userID string) ([]models.LinkedAccount, error) {
	query := `
		SELECT ` + accountColumns + `, access_token
		FROM user_accounts
		WHERE user_id = $1 AND is_active = TRUE AND access_token IS NOT NULL
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []models.LinkedAccount
	for rows.Next() {
		var sealed string
		acc, err := scanAccount(rows, &sealed)
		if err != nil {
			return nil, err
		}

		plain, err := s.cipher.Decrypt(sealed)
		if err != nil {
			utils.LogBankingFailure("credential decrypt failed", acc.ProviderAccountID, userID, err)
			continue
		}
		acc.AccessToken = string(plain)
		targets = append(targets, acc)
	}

	return targets, rows.Err()
}

// Deactivate soft-unlinks an account. Its row and transactions stay in place.
func (s *BankingService) Deactivate(ctx context.Context, userID, providerAccountID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND account_id = $2
	`, userID, providerAccountID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("account %s: %w", providerAccountID, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
