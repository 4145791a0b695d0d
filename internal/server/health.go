package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fitplan/internal/db"
)

// health handles GET /api/health.
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"ai_configured": h.ai.Configured(),
		"database":      h.databaseStatus(c.Request.Context()),
	})
}

func (h *Handler) databaseStatus(ctx context.Context) string {
	if !db.IsPersistent(h.profiles) {
		return "not configured"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.profiles.Ping(ctx); err != nil {
		h.logger.Warnw("Database ping failed", "error", err)
		return "not configured"
	}
	return "connected"
}
