package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"

	"github.com/gin-gonic/gin"
)

const defaultInsightMonths = 3

type BudgetStore interface {
	CreateBudget(ctx context.Context, userID string, req models.CreateBudgetRequest) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]models.BudgetSpending, error)
	UpdateBudget(ctx context.Context, userID, budgetID string, req models.UpdateBudgetRequest) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
	GetSpendingInsights(ctx context.Context, userID string, months int) ([]models.SpendingInsight, error)
}

type BudgetHandler struct {
	Budgets  BudgetStore
	Notifier Notifier
}

func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	var req models.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	budget, err := h.Budgets.CreateBudget(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.Notify(userID, models.Event{Type: models.EventBudgetsChanged, Payload: budget.ID})
	respondOK(c, http.StatusCreated, gin.H{"budget": budget})
}

func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	budgets, err := h.Budgets.ListBudgets(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"budgets": budgets})
}

func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var req models.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	userID := middleware.GetUserID(c)
	budget, err := h.Budgets.UpdateBudget(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.Notify(userID, models.Event{Type: models.EventBudgetsChanged, Payload: budget.ID})
	respondOK(c, http.StatusOK, gin.H{"budget": budget})
}

func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID := middleware.GetUserID(c)
	budgetID := c.Param("id")

	if err := h.Budgets.DeleteBudget(c.Request.Context(), userID, budgetID); err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.Notify(userID, models.Event{Type: models.EventBudgetsChanged, Payload: budgetID})
	respondOK(c, http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}

func (h *BudgetHandler) GetInsights(c *gin.Context) {
	months := defaultInsightMonths
	if raw := c.Query("months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respondFailure(c, http.StatusBadRequest, "Invalid request", "months must be an integer")
			return
		}
		months = v
	}

	insights, err := h.Budgets.GetSpendingInsights(c.Request.Context(), middleware.GetUserID(c), months)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"insights": insights})
}
