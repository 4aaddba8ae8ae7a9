package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	DefaultTransactionLimit = 50
	MaxTransactionLimit     = 500
	dateLayout              = "2006-01-02"
)

const transactionColumns = `t.id, t.account_id, t.transaction_id, t.amount, t.description,
	COALESCE(t.merchant_name, ''), t.date::text, COALESCE(t.posted_date::text, ''),
	t.category, COALESCE(t.subcategory, ''), t.is_recurring, t.is_manual,
	t.created_at, t.updated_at, a.account_name, a.account_type`

// TransactionService is the Transaction Store. Rows are unique by provider transaction id and
// only reachable through accounts owned by the requesting user.
type TransactionService struct {
	db *sql.DB
}

func NewTransactionService(db *sql.DB) *TransactionService {
	return &TransactionService{db: db}
}

func scanTransaction(row rowScanner) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.AccountID, &t.ProviderTransactionID, &t.Amount, &t.Description,
		&t.MerchantName, &t.Date, &t.PostedDate,
		&t.Category, &t.Subcategory, &t.IsRecurring, &t.IsManual,
		&t.CreatedAt, &t.UpdatedAt, &t.AccountName, &t.AccountType,
	)
	return t, err
}

func collectTransactions(rows *sql.Rows) ([]models.Transaction, error) {
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// InsertIfAbsent stores a provider transaction under accountID. An existing row with the same
// provider transaction id is left untouched and reported as (false, nil).
func (s *TransactionService) InsertIfAbsent(ctx context.Context, accountID string, txn models.ProviderTransaction) (bool, error) {
	if txn.ProviderTransactionID == "" {
		return false, validationErrorf("provider transaction id is required")
	}
	if _, err := time.Parse(dateLayout, txn.Date); err != nil {
		return false, validationErrorf("transaction %s has invalid date %q", txn.ProviderTransactionID, txn.Date)
	}

	query := `
		INSERT INTO transactions (
			id, account_id, transaction_id, amount, description, merchant_name,
			date, posted_date, category, subcategory, is_recurring, is_manual,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $9, FALSE, FALSE, clock_timestamp(), NOW())
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id
	`

	var id string
	err := s.db.QueryRowContext(ctx, query,
		uuid.New().String(),
		accountID,
		txn.ProviderTransactionID,
		txn.Amount,
		txn.Name,
		nullString(txn.MerchantName),
		txn.Date,
		MapProviderCategory(txn.Category),
		nullString(ProviderSubcategory(txn.Category)),
	).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		utils.SafeDebug("transaction %s already stored, skipped", txn.ProviderTransactionID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert transaction %s: %w", txn.ProviderTransactionID, err)
	}
	return true, nil
}

// BulkInsert attempts every transaction and returns how many new rows were created.
// Individual failures are logged; an error is returned only when every attempt failed.
func (s *TransactionService) BulkInsert(ctx context.Context, accountID string, txns []models.ProviderTransaction) (int, error) {
	created := 0
	var failures []error

	for _, txn := range txns {
		inserted, err := s.InsertIfAbsent(ctx, accountID, txn)
		if err != nil {
			utils.LogBankingFailure("transaction insert failed, amount "+utils.MaskAmount(txn.Amount), accountID, "", err)
			failures = append(failures, err)
			continue
		}
		if inserted {
			created++
		}
	}

	if len(txns) > 0 && len(failures) == len(txns) {
		return 0, errors.Join(failures...)
	}
	return created, nil
}

// Query lists the user's transactions on active accounts, newest first, then paginates.
func (s *TransactionService) Query(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultTransactionLimit
	}
	if filter.Limit > MaxTransactionLimit {
		filter.Limit = MaxTransactionLimit
	}
	if filter.Offset < 0 {
		return nil, validationErrorf("offset must not be negative")
	}

	args := []interface{}{userID}
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{"a.user_id = $1", "a.is_active = TRUE"}

	if filter.StartDate != "" {
		if _, err := time.Parse(dateLayout, filter.StartDate); err != nil {
			return nil, validationErrorf("start_date must be YYYY-MM-DD")
		}
		where = append(where, "t.date >= "+next(filter.StartDate))
	}
	if filter.EndDate != "" {
		if _, err := time.Parse(dateLayout, filter.EndDate); err != nil {
			return nil, validationErrorf("end_date must be YYYY-MM-DD")
		}
		where = append(where, "t.date <= "+next(filter.EndDate))
	}
	if filter.Search != "" {
		p := next("%" + escapeLike(filter.Search) + "%")
		where = append(where, fmt.Sprintf("(t.description ILIKE %s OR t.merchant_name ILIKE %s)", p, p))
	}
	if filter.Category != "" {
		where = append(where, "t.category = "+next(filter.Category))
	}
	if filter.IsRecurring != nil {
		where = append(where, "t.is_recurring = "+next(*filter.IsRecurring))
	}
	if filter.IsManual != nil {
		where = append(where, "t.is_manual = "+next(*filter.IsManual))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions t
		JOIN user_accounts a ON a.id = t.account_id
		WHERE %s
		ORDER BY t.date DESC, t.created_at ASC, t.id ASC
		LIMIT %s OFFSET %s
	`, transactionColumns, strings.Join(where, " AND "), next(filter.Limit), next(filter.Offset))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectTransactions(rows)
}

// UpdateCategory re-categorizes one transaction owned by userID.
func (s *TransactionService) UpdateCategory(ctx context.Context, userID, transactionID, category, subcategory string) (*models.Transaction, error) {
	if category == "" {
		return nil, validationErrorf("category is required")
	}

	query := `
		UPDATE transactions t
		SET category = $1, subcategory = $2, updated_at = NOW()
		FROM user_accounts a
		WHERE t.account_id = a.id AND a.user_id = $3 AND t.transaction_id = $4
		RETURNING ` + transactionColumns

	return s.updateOne(ctx, transactionID, query, category, nullString(subcategory), userID, transactionID)
}

// BulkUpdateCategory re-categorizes every listed transaction the user owns.
// Unknown ids are simply missing from the result.
func (s *TransactionService) BulkUpdateCategory(ctx context.Context, userID string, transactionIDs []string, category, subcategory string) ([]models.Transaction, error) {
	if len(transactionIDs) == 0 {
		return nil, validationErrorf("transactionIds must be a non-empty array")
	}
	if category == "" {
		return nil, validationErrorf("category is required")
	}

	query := `
		UPDATE transactions t
		SET category = $1, subcategory = $2, updated_at = NOW()
		FROM user_accounts a
		WHERE t.account_id = a.id AND a.user_id = $3 AND t.transaction_id = ANY($4)
		RETURNING ` + transactionColumns

	rows, err := s.db.QueryContext(ctx, query, category, nullString(subcategory), userID, pq.Array(transactionIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to bulk update categories: %w", err)
	}
	return collectTransactions(rows)
}

// UpdateFlag sets exactly one boolean flag on a transaction.
func (s *TransactionService) UpdateFlag(ctx context.Context, userID, transactionID string, flag models.TransactionFlag, value bool) (*models.Transaction, error) {
	var column string
	switch flag {
	case models.FlagRecurring:
		column = "is_recurring"
	case models.FlagManual:
		column = "is_manual"
	default:
		return nil, validationErrorf("unknown flag %q", flag)
	}

	query := `
		UPDATE transactions t
		SET ` + column + ` = $1, updated_at = NOW()
		FROM user_accounts a
		WHERE t.account_id = a.id AND a.user_id = $2 AND t.transaction_id = $3
		RETURNING ` + transactionColumns

	return s.updateOne(ctx, transactionID, query, value, userID, transactionID)
}

func (s *TransactionService) updateOne(ctx context.Context, transactionID, query string, args ...interface{}) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction %s: %w", transactionID, err)
	}
	return &t, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
