package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"

	"github.com/gin-gonic/gin"
)

type TransactionStore interface {
	Query(ctx context.Context, userID string, filter models.TransactionFilter) ([]models.Transaction, error)
	UpdateCategory(ctx context.Context, userID, transactionID, category, subcategory string) (*models.Transaction, error)
	BulkUpdateCategory(ctx context.Context, userID string, transactionIDs []string, category, subcategory string) ([]models.Transaction, error)
	UpdateFlag(ctx context.Context, userID, transactionID string, flag models.TransactionFlag, value bool) (*models.Transaction, error)
}

type TransactionHandler struct {
	Transactions TransactionStore
	Notifier     Notifier
}

func parseFilter(c *gin.Context) (models.TransactionFilter, error) {
	f := models.TransactionFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Search:    c.Query("search"),
		Category:  c.Query("category"),
	}

	var err error
	if f.Limit, err = intQuery(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intQuery(c, "offset"); err != nil {
		return f, err
	}
	if f.IsRecurring, err = boolQuery(c, "recurring"); err != nil {
		return f, err
	}
	if f.IsManual, err = boolQuery(c, "is_manual"); err != nil {
		return f, err
	}
	return f, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// boolQuery is tri-state: absent means no filter.
func boolQuery(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be true or false", key)
	}
	return &v, nil
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respondFailure(c, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}

	transactions, err := h.Transactions.Query(c.Request.Context(), middleware.GetUserID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

func (h *TransactionHandler) UpdateCategory(c *gin.Context) {
	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	txn, err := h.Transactions.UpdateCategory(c.Request.Context(), userID, c.Param("id"), req.Category, req.Subcategory)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.Notify(userID, models.Event{Type: models.EventTransactionsUpdated, Payload: []string{txn.ProviderTransactionID}})
	respondOK(c, http.StatusOK, gin.H{"transaction": txn})
}

func (h *TransactionHandler) BulkUpdateCategory(c *gin.Context) {
	var req models.BulkUpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	updated, err := h.Transactions.BulkUpdateCategory(c.Request.Context(), userID, req.TransactionIDs, req.Category, req.Subcategory)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]string, len(updated))
	for i, t := range updated {
		ids[i] = t.ProviderTransactionID
	}
	h.Notifier.Notify(userID, models.Event{Type: models.EventTransactionsUpdated, Payload: ids})

	respondOK(c, http.StatusOK, gin.H{
		"updatedCount": len(updated),
		"updatedRows":  updated,
	})
}

func (h *TransactionHandler) UpdateRecurring(c *gin.Context) {
	var req models.UpdateRecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.updateFlag(c, models.FlagRecurring, *req.IsRecurring)
}

func (h *TransactionHandler) UpdateManual(c *gin.Context) {
	var req models.UpdateManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.updateFlag(c, models.FlagManual, *req.IsManual)
}

func (h *TransactionHandler) updateFlag(c *gin.Context, flag models.TransactionFlag, value bool) {
	userID := middleware.GetUserID(c)
	txn, err := h.Transactions.UpdateFlag(c.Request.Context(), userID, c.Param("id"), flag, value)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.Notify(userID, models.Event{Type: models.EventTransactionsUpdated, Payload: []string{txn.ProviderTransactionID}})
	respondOK(c, http.StatusOK, gin.H{"transaction": txn})
}
