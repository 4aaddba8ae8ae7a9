package handlers

import (
	"context"
	"net/http"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-gonic/gin"
)

type AccountStore interface {
	ListActiveAccounts(ctx context.Context, userID string) ([]models.LinkedAccount, error)
	Deactivate(ctx context.Context, userID, providerAccountID string) error
}

type AccountHandler struct {
	Accounts AccountStore
	Importer Importer
	Notifier Notifier
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.Accounts.ListActiveAccounts(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"accounts": accounts})
}

// SyncAccounts refreshes balances and pulls recent transactions for every active account.
func (h *AccountHandler) SyncAccounts(c *gin.Context) {
	userID := middleware.GetUserID(c)

	summary, err := h.Importer.Sync(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.Notify(userID, models.Event{Type: models.EventTransactionsImported, Payload: gin.H{
		"savedAccounts":        len(summary.SavedAccounts),
		"transactionsImported": summary.TransactionsImported,
	}})
	respondOK(c, http.StatusOK, summaryBody(summary))
}

func (h *AccountHandler) UnlinkAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	accountID := c.Param("accountId")

	if err := h.Accounts.Deactivate(c.Request.Context(), userID, accountID); err != nil {
		respondError(c, err)
		return
	}

	utils.LogBankingAction("account unlinked", accountID, userID)
	h.Notifier.Notify(userID, models.Event{Type: models.EventAccountsChanged})
	respondOK(c, http.StatusOK, gin.H{"message": "Account unlinked"})
}
