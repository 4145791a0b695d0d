package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fitplan/internal/ai"
	"fitplan/internal/models"
)

type chatRequest struct {
	Message string `json:"message"`
}

// chat handles POST /api/chat. The stored profile is sent as context only to
// a live provider.
func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	// A missing or malformed body is treated like an empty message.
	_ = c.ShouldBindJSON(&req)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		apiError(c, http.StatusBadRequest, "No message provided")
		return
	}

	ctx := c.Request.Context()
	var profile *models.Profile
	if h.ai.Configured() {
		profile = h.currentProfile(ctx)
	}

	reply, err := h.ai.Chat(ctx, message, profile)
	if err != nil {
		h.logger.Errorw("AI chat failed", "error", err, "source", h.ai.Source())
		c.JSON(http.StatusInternalServerError, gin.H{
			"reply":    ai.UnavailableReply(err),
			"fallback": true,
			"source":   ai.FallbackSource,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply, "source": h.ai.Source()})
}
