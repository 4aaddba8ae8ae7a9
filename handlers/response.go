package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/LovationAdmin/superapp-api/services"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(status, body)
}

func respondFailure(c *gin.Context, status int, message string, details string) {
	body := gin.H{
		"success": false,
		"error":   message,
	}
	if details != "" {
		body["details"] = details
	}
	c.JSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	respondFailure(c, http.StatusBadRequest, "Invalid request", err.Error())
}

// respondError is the single place service errors become HTTP statuses.
func respondError(c *gin.Context, err error) {
	var providerErr *services.ProviderError

	switch {
	case errors.Is(err, services.ErrValidation):
		respondFailure(c, http.StatusBadRequest, "Invalid request",
			strings.TrimPrefix(err.Error(), services.ErrValidation.Error()+": "))
	case errors.Is(err, services.ErrNotFound):
		respondFailure(c, http.StatusNotFound, "Not found", "")
	case errors.Is(err, services.ErrConflict):
		respondFailure(c, http.StatusConflict, "Already exists", err.Error())
	case errors.As(err, &providerErr):
		respondFailure(c, http.StatusInternalServerError, "Bank provider request failed", providerErr.Detail)
	default:
		utils.SafeError("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		respondFailure(c, http.StatusInternalServerError, "Internal server error", "")
	}
}
