package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/LovationAdmin/superapp-api/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestUpsertAccount(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBankingService(db, newTestCipher(t))

	mock.ExpectQuery(`INSERT INTO user_accounts .* ON CONFLICT \(user_id, account_id\)`).
		WithArgs(
			sqlmock.AnyArg(), "user-1", "plaid-acc-1", "Everyday Checking", "depository",
			"checking", "0000", 120.5, 100.0, "CAD", sealedArg{plain: "access-sandbox-abc"},
		).
		WillReturnRows(addAccountRow(sqlmock.NewRows(accountRowColumns), "row-1", "user-1", "plaid-acc-1", "Everyday Checking", 120.5))

	saved, err := svc.UpsertAccount(context.Background(), "user-1", models.ProviderAccount{
		ProviderAccountID: "plaid-acc-1",
		Name:              "Everyday Checking",
		Type:              "depository",
		Subtype:           "checking",
		Mask:              "0000",
		CurrentBalance:    floatPtr(120.5),
		AvailableBalance:  floatPtr(100),
	}, "access-sandbox-abc")
	if err != nil {
		t.Fatalf("UpsertAccount() error = %v", err)
	}
	if saved.ID != "row-1" || !saved.IsActive {
		t.Errorf("UpsertAccount() = %+v", saved)
	}
	if saved.AccessToken != "" {
		t.Error("returned account should not carry the credential")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestUpsertAccount_BalanceFallbacks(t *testing.T) {
	tests := []struct {
		name      string
		current   *float64
		available *float64
		balance   float64
	}{
		{"available when current missing", nil, floatPtr(42), 42},
		{"zero when both missing", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			svc := NewBankingService(db, newTestCipher(t))

			mock.ExpectQuery(`INSERT INTO user_accounts`).
				WithArgs(
					sqlmock.AnyArg(), "user-1", "acc", "Savings", "depository",
					nil, nil, tt.balance, sqlmock.AnyArg(), "CAD", sqlmock.AnyArg(),
				).
				WillReturnRows(addAccountRow(sqlmock.NewRows(accountRowColumns), "row-1", "user-1", "acc", "Savings", tt.balance))

			_, err := svc.UpsertAccount(context.Background(), "user-1", models.ProviderAccount{
				ProviderAccountID: "acc",
				Name:              "Savings",
				Type:              "depository",
				CurrentBalance:    tt.current,
				AvailableBalance:  tt.available,
			}, "tok")
			if err != nil {
				t.Fatalf("UpsertAccount() error = %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestUpsertAccount_MissingIDs(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewBankingService(db, newTestCipher(t))

	_, err := svc.UpsertAccount(context.Background(), "", models.ProviderAccount{ProviderAccountID: "x"}, "tok")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("UpsertAccount() error = %v, want ErrValidation", err)
	}
}

func TestListActiveAccounts(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBankingService(db, newTestCipher(t))

	rows := sqlmock.NewRows(accountRowColumns)
	addAccountRow(rows, "row-2", "user-1", "acc-2", "Savings", 10)
	addAccountRow(rows, "row-1", "user-1", "acc-1", "Checking", 20)

	mock.ExpectQuery(`FROM user_accounts\s+WHERE user_id = \$1 AND is_active = TRUE\s+ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(rows)

	accounts, err := svc.ListActiveAccounts(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListActiveAccounts() error = %v", err)
	}
	if len(accounts) != 2 || accounts[0].ID != "row-2" {
		t.Errorf("ListActiveAccounts() = %+v", accounts)
	}
}

func TestListActiveAccounts_EmptyIsNotNil(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBankingService(db, newTestCipher(t))

	mock.ExpectQuery(`FROM user_accounts`).WillReturnRows(sqlmock.NewRows(accountRowColumns))

	accounts, err := svc.ListActiveAccounts(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("ListActiveAccounts() error = %v", err)
	}
	if accounts == nil {
		t.Error("ListActiveAccounts() returned nil, want empty slice")
	}
}

func TestListSyncTargets_SkipsUndecryptable(t *testing.T) {
	cipher := newTestCipher(t)
	db, mock := newMockDB(t)
	svc := NewBankingService(db, cipher)

	sealed, err := cipher.Encrypt([]byte("access-sandbox-good"))
	if err != nil {
		t.Fatal(err)
	}

	rows := sqlmock.NewRows(append(accountRowColumns, "access_token"))
	addAccountRow(rows, "row-1", "user-1", "acc-1", "Checking", 1, sealed)
	addAccountRow(rows, "row-2", "user-1", "acc-2", "Savings", 2, "corrupted")

	mock.ExpectQuery(`SELECT .* access_token\s+FROM user_accounts`).WithArgs("user-1").WillReturnRows(rows)

	targets, err := svc.ListSyncTargets(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListSyncTargets() error = %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("ListSyncTargets() returned %d targets, want 1", len(targets))
	}
	if targets[0].AccessToken != "access-sandbox-good" {
		t.Errorf("AccessToken = %q", targets[0].AccessToken)
	}
}

func TestDeactivate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewBankingService(db, newTestCipher(t))

	mock.ExpectExec(`UPDATE user_accounts\s+SET is_active = FALSE`).
		WithArgs("user-1", "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE user_accounts`).
		WithArgs("user-1", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.Deactivate(context.Background(), "user-1", "acc-1"); err != nil {
		t.Errorf("Deactivate() error = %v", err)
	}
	if err := svc.Deactivate(context.Background(), "user-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Deactivate() error = %v, want ErrNotFound", err)
	}
}
