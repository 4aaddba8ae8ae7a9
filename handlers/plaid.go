package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LinkTokenCreator interface {
	CreateLinkToken(ctx context.Context, userID string) (*models.LinkToken, error)
}

type Importer interface {
	LinkAndImport(ctx context.Context, userID, publicToken string) (*models.ImportSummary, error)
	Sync(ctx context.Context, userID string) (*models.ImportSummary, error)
}

type PlaidHandler struct {
	Links    LinkTokenCreator
	Importer Importer
	Notifier Notifier
}

// CreateLinkToken is public: an anonymous caller gets a throwaway user id.
func (h *PlaidHandler) CreateLinkToken(c *gin.Context) {
	var req models.LinkTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "user_" + uuid.NewString()
	}

	token, err := h.Links.CreateLinkToken(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"linkToken":  token.Token,
		"expiration": token.Expiration,
	})
}

func (h *PlaidHandler) ExchangeToken(c *gin.Context) {
	var req models.ExchangeTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFailure(c, http.StatusBadRequest, "publicToken is required", "")
		return
	}

	userID := middleware.GetUserID(c)
	summary, err := h.Importer.LinkAndImport(c.Request.Context(), userID, req.PublicToken)
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

func summaryBody(summary *models.ImportSummary) gin.H {
	return gin.H{
		"savedAccounts":        summary.SavedAccounts,
		"transactionsImported": summary.TransactionsImported,
		"userId":               summary.UserID,
	}
}
