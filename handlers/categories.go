package handlers

import (
	"context"
	"net/http"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"

	"github.com/gin-gonic/gin"
)

type CategoryStore interface {
	CreateCategory(ctx context.Context, userID string, req models.CreateCategoryRequest) (*models.CustomCategory, error)
	ListCategories(ctx context.Context, userID string) (*models.CategoryList, error)
}

type CategoryHandler struct {
	Categories CategoryStore
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	list, err := h.Categories.ListCategories(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"predefined": list.Predefined,
		"custom":     list.Custom,
		"all":        list.All,
	})
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.Categories.CreateCategory(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"category": category})
}
