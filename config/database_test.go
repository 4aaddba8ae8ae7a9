package config

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestRunMigrations(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for _, m := range migrations {
		mock.ExpectExec(m).WillReturnResult(sqlmock.NewResult(0, 0))
	}

	if err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRunMigrations_StopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(migrations[0])).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS user_profiles").WillReturnError(errors.New("permission denied"))

	err = RunMigrations(context.Background(), db)
	if err == nil || !strings.Contains(err.Error(), "migration 1") {
		t.Fatalf("RunMigrations() error = %v, want failure at migration 1", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestMigrations_Constraints(t *testing.T) {
	all := strings.Join(migrations, "\n")
	for _, want := range []string{
		"UNIQUE(user_id, account_id)",
		"transaction_id TEXT UNIQUE NOT NULL",
		"DEFAULT clock_timestamp()",
		"UNIQUE(user_id, name)",
		"budget_id UUID UNIQUE NOT NULL REFERENCES budgets(id)",
		"CONSTRAINT budgets_period_order CHECK (period_end >= period_start)",
	} {
		if !strings.Contains(all, want) {
			t.Errorf("schema missing %q", want)
		}
	}
}
