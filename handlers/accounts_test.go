package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/services"
)

type fakeAccounts struct {
	active map[string][]models.LinkedAccount
}

func (f *fakeAccounts) ListActiveAccounts(_ context.Context, userID string) ([]models.LinkedAccount, error) {
	if accounts, ok := f.active[userID]; ok {
		return accounts, nil
	}
	return []models.LinkedAccount{}, nil
}

func (f *fakeAccounts) Deactivate(_ context.Context, userID, providerAccountID string) error {
	for i, a := range f.active[userID] {
		if a.ProviderAccountID == providerAccountID {
			f.active[userID] = append(f.active[userID][:i], f.active[userID][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("account %s: %w", providerAccountID, services.ErrNotFound)
}

func TestAccounts(t *testing.T) {
	store := &fakeAccounts{active: map[string][]models.LinkedAccount{
		"user-1": {{ID: "row-1", ProviderAccountID: "a1", AccessToken: "access-sandbox-secret"}},
	}}
	notifier := &recordingNotifier{}
	h := &AccountHandler{Accounts: store, Importer: &fakeImporter{}, Notifier: notifier}

	r := newRouter()
	r.GET("/users/:userId/accounts", h.ListAccounts)
	r.POST("/users/:userId/accounts/sync", h.SyncAccounts)
	r.DELETE("/users/:userId/accounts/:accountId", h.UnlinkAccount)

	rr, body := do(t, r, http.MethodGet, "/users/user-1/accounts", "user-1", "")
	var accounts []models.LinkedAccount
	decode(t, body["accounts"], &accounts)
	if rr.Code != http.StatusOK || len(accounts) != 1 {
		t.Fatalf("status = %d, accounts = %+v", rr.Code, accounts)
	}
	if accounts[0].AccessToken != "" {
		t.Error("credential serialized")
	}

	rr, _ = do(t, r, http.MethodPost, "/users/user-1/accounts/sync", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Errorf("sync status = %d", rr.Code)
	}

	rr, _ = do(t, r, http.MethodDelete, "/users/user-1/accounts/a1", "user-1", "")
	if rr.Code != http.StatusOK {
		t.Errorf("unlink status = %d", rr.Code)
	}
	rr, _ = do(t, r, http.MethodDelete, "/users/user-1/accounts/a1", "user-1", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second unlink status = %d, want 404", rr.Code)
	}

	got := notifier.types("user-1")
	if len(got) != 2 || got[0] != models.EventTransactionsImported || got[1] != models.EventAccountsChanged {
		t.Errorf("events = %v", got)
	}
}
