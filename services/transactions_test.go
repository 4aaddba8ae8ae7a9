package services

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/LovationAdmin/superapp-api/models"
)

func providerTxn(id string) models.ProviderTransaction {
	return models.ProviderTransaction{
		ProviderTransactionID: id,
		ProviderAccountID:     "plaid-acc-1",
		Amount:                4.5,
		Name:                  "Coffee Shop",
		MerchantName:          "Blue Bottle",
		Date:                  "2024-03-10",
		Category:              []string{"Food and Drink", "Coffee Shop"},
	}
}

func TestInsertIfAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	mock.ExpectQuery(`INSERT INTO transactions .* ON CONFLICT \(transaction_id\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "acc-row-1", "txn-1", 4.5, "Coffee Shop", "Blue Bottle", "2024-03-10", "Food & Dining", "Coffee Shop").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("row-1"))
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	inserted, err := svc.InsertIfAbsent(context.Background(), "acc-row-1", providerTxn("txn-1"))
	if err != nil || !inserted {
		t.Fatalf("InsertIfAbsent() = %v, %v; want true, nil", inserted, err)
	}

	inserted, err = svc.InsertIfAbsent(context.Background(), "acc-row-1", providerTxn("txn-1"))
	if err != nil || inserted {
		t.Errorf("second InsertIfAbsent() = %v, %v; want false, nil", inserted, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestInsertIfAbsent_Validation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	bad := providerTxn("txn-1")
	bad.Date = "10/03/2024"
	if _, err := svc.InsertIfAbsent(context.Background(), "acc", bad); !errors.Is(err, ErrValidation) {
		t.Errorf("bad date error = %v, want ErrValidation", err)
	}
	if _, err := svc.InsertIfAbsent(context.Background(), "acc", providerTxn("")); !errors.Is(err, ErrValidation) {
		t.Errorf("missing id error = %v, want ErrValidation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBulkInsert_ContinuesPastFailures(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r1"))
	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("r4"))

	created, err := svc.BulkInsert(context.Background(), "acc", []models.ProviderTransaction{
		providerTxn("a"), providerTxn("b"), providerTxn("c"), providerTxn("d"),
	})
	if err != nil {
		t.Fatalf("BulkInsert() error = %v", err)
	}
	if created != 2 {
		t.Errorf("BulkInsert() = %d, want 2", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBulkInsert_AllFail(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnError(errors.New("down"))
	mock.ExpectQuery(`INSERT INTO transactions`).WillReturnError(errors.New("down"))

	created, err := svc.BulkInsert(context.Background(), "acc", []models.ProviderTransaction{providerTxn("a"), providerTxn("b")})
	if err == nil {
		t.Fatal("BulkInsert() should fail when every insert fails")
	}
	if created != 0 {
		t.Errorf("BulkInsert() = %d, want 0", created)
	}
}

func TestBulkInsert_Empty(t *testing.T) {
	db, _ := newMockDB(t)
	created, err := NewTransactionService(db).BulkInsert(context.Background(), "acc", nil)
	if err != nil || created != 0 {
		t.Errorf("BulkInsert(nil) = %d, %v", created, err)
	}
}

func TestQuery_Defaults(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	rows := sqlmock.NewRows(transactionRowColumns)
	addTransactionRow(rows, "t1", "txn-1", "Food & Dining", 4.5)
	addTransactionRow(rows, "t2", "txn-2", "Shopping", 30)

	mock.ExpectQuery(`WHERE a.user_id = \$1 AND a.is_active = TRUE ORDER BY t.date DESC, t.created_at ASC, t.id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("user-1", DefaultTransactionLimit, 0).
		WillReturnRows(rows)

	got, err := svc.Query(context.Background(), "user-1", models.TransactionFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 2 || got[0].AccountName != "Everyday Checking" {
		t.Errorf("Query() = %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQuery_Filters(t *testing.T) {
	recurring := true
	manual := true

	tests := []struct {
		name   string
		filter models.TransactionFilter
		query  string
		args   []driver.Value
	}{
		{
			name: "dates, search, category and recurring",
			filter: models.TransactionFilter{
				Limit:       10,
				Offset:      20,
				StartDate:   "2024-01-01",
				EndDate:     "2024-01-31",
				Search:      "50%",
				Category:    "Bills & Utilities",
				IsRecurring: &recurring,
			},
			query: `WHERE a.user_id = \$1 AND a.is_active = TRUE AND t.date >= \$2 AND t.date <= \$3 AND \(t.description ILIKE \$4 OR t.merchant_name ILIKE \$4\) AND t.category = \$5 AND t.is_recurring = \$6 ORDER BY t.date DESC, t.created_at ASC, t.id ASC LIMIT \$7 OFFSET \$8`,
			args:  []driver.Value{"user-1", "2024-01-01", "2024-01-31", `%50\%%`, "Bills & Utilities", true, 10, 20},
		},
		{
			name:   "category and manual",
			filter: models.TransactionFilter{Category: "Fees", IsManual: &manual},
			query:  `WHERE a.user_id = \$1 AND a.is_active = TRUE AND t.category = \$2 AND t.is_manual = \$3 ORDER BY t.date DESC, t.created_at ASC, t.id ASC LIMIT \$4 OFFSET \$5`,
			args:   []driver.Value{"user-1", "Fees", true, DefaultTransactionLimit, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			svc := NewTransactionService(db)

			mock.ExpectQuery(tt.query).
				WithArgs(tt.args...).
				WillReturnRows(sqlmock.NewRows(transactionRowColumns))

			got, err := svc.Query(context.Background(), "user-1", tt.filter)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Errorf("Query() = %v, want empty slice", got)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestQuery_LimitCapped(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`LIMIT`).
		WithArgs("user-1", MaxTransactionLimit, 0).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns))

	if _, err := NewTransactionService(db).Query(context.Background(), "user-1", models.TransactionFilter{Limit: 10000}); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestQuery_Invalid(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewTransactionService(db)

	for name, f := range map[string]models.TransactionFilter{
		"negative offset": {Offset: -1},
		"bad start date":  {StartDate: "yesterday"},
		"bad end date":    {EndDate: "2024-13-01"},
	} {
		if _, err := svc.Query(context.Background(), "user-1", f); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: error = %v, want ErrValidation", name, err)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`a_b%c\d`); got != `a\_b\%c\\d` {
		t.Errorf("escapeLike() = %q", got)
	}
}

func TestUpdateCategory(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	mock.ExpectQuery(`UPDATE transactions t\s+SET category = \$1, subcategory = \$2`).
		WithArgs("Travel", "Flights", "user-1", "txn-1").
		WillReturnRows(addTransactionRow(sqlmock.NewRows(transactionRowColumns), "t1", "txn-1", "Travel", 300))
	mock.ExpectQuery(`UPDATE transactions`).
		WithArgs("Travel", nil, "user-2", "txn-1").
		WillReturnRows(sqlmock.NewRows(transactionRowColumns))

	updated, err := svc.UpdateCategory(context.Background(), "user-1", "txn-1", "Travel", "Flights")
	if err != nil {
		t.Fatalf("UpdateCategory() error = %v", err)
	}
	if updated.Category != "Travel" {
		t.Errorf("Category = %q", updated.Category)
	}

	if _, err := svc.UpdateCategory(context.Background(), "user-2", "txn-1", "Travel", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign UpdateCategory() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateCategory(context.Background(), "user-1", "txn-1", "", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("empty category error = %v, want ErrValidation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBulkUpdateCategory(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	ids := []string{"txn-1", "txn-unknown"}
	mock.ExpectQuery(`t.transaction_id = ANY\(\$4\)`).
		WithArgs("Shopping", nil, "user-1", pq.Array(ids)).
		WillReturnRows(addTransactionRow(sqlmock.NewRows(transactionRowColumns), "t1", "txn-1", "Shopping", 12))

	updated, err := svc.BulkUpdateCategory(context.Background(), "user-1", ids, "Shopping", "")
	if err != nil {
		t.Fatalf("BulkUpdateCategory() error = %v", err)
	}
	if len(updated) != 1 {
		t.Errorf("BulkUpdateCategory() updated %d rows, want 1", len(updated))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestBulkUpdateCategory_EmptyList(t *testing.T) {
	db, mock := newMockDB(t)
	_, err := NewTransactionService(db).BulkUpdateCategory(context.Background(), "user-1", []string{}, "Shopping", "")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpdateFlag(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTransactionService(db)

	mock.ExpectQuery(`SET is_recurring = \$1`).
		WithArgs(true, "user-1", "txn-1").
		WillReturnRows(addTransactionRow(sqlmock.NewRows(transactionRowColumns), "t1", "txn-1", "Bills & Utilities", 80))
	mock.ExpectQuery(`SET is_manual = \$1`).
		WithArgs(false, "user-1", "txn-1").
		WillReturnRows(addTransactionRow(sqlmock.NewRows(transactionRowColumns), "t1", "txn-1", "Bills & Utilities", 80))

	if _, err := svc.UpdateFlag(context.Background(), "user-1", "txn-1", models.FlagRecurring, true); err != nil {
		t.Errorf("UpdateFlag(recurring) error = %v", err)
	}
	if _, err := svc.UpdateFlag(context.Background(), "user-1", "txn-1", models.FlagManual, false); err != nil {
		t.Errorf("UpdateFlag(manual) error = %v", err)
	}
	if _, err := svc.UpdateFlag(context.Background(), "user-1", "txn-1", "pinned", true); !errors.Is(err, ErrValidation) {
		t.Errorf("UpdateFlag(pinned) error = %v, want ErrValidation", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
