package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fitplan/internal/models"
	"fitplan/internal/nutrition"
)

// getProfile handles GET /api/profile. With nothing stored it returns {}.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		h.logger.Errorw("Failed to load profile", "error", err)
		apiError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	if p == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, p)
}

// saveProfile handles POST /api/profile, replacing whatever was stored.
func (h *Handler) saveProfile(c *gin.Context) {
	var p models.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		apiError(c, http.StatusBadRequest, "Invalid profile JSON")
		return
	}
	p.ID = 0

	if err := h.profiles.Replace(c.Request.Context(), &p); err != nil {
		h.logger.Errorw("Failed to save profile", "error", err)
		apiError(c, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	h.logger.Infow("Profile saved", "profile_id", p.ID)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Profile saved successfully"})
}

// getMealPlan handles GET /api/mealplan for the stored profile.
func (h *Handler) getMealPlan(c *gin.Context) {
	p := h.currentProfile(c.Request.Context())
	c.JSON(http.StatusOK, nutrition.GeneratePlan(p))
}
