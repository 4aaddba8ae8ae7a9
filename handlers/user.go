package handlers

import (
	"context"
	"net/http"

	"github.com/LovationAdmin/superapp-api/middleware"
	"github.com/LovationAdmin/superapp-api/models"
	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-gonic/gin"
)

type ProfileSaver interface {
	SaveProfile(ctx context.Context, user models.AuthUser) (*models.UserProfile, error)
}

type UserHandler struct {
	Profiles ProfileSaver
}

// SaveProfile mirrors the token's user into the local profile table.
func (h *UserHandler) SaveProfile(c *gin.Context) {
	user := middleware.GetAuthUser(c)

	profile, err := h.Profiles.SaveProfile(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.LogAuthAction("profile saved", user.ID, true)
	respondOK(c, http.StatusOK, gin.H{"profile": profile})
}
