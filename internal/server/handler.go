package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fitplan/internal/ai"
	"fitplan/internal/db"
	"fitplan/internal/models"
	"fitplan/pkg/logger"
)

// Options configures the file-facing parts of the HTTP surface.
type Options struct {
	StaticDir      string
	UploadDir      string
	MaxUploadBytes int64
}

// Handler holds the dependencies shared by all route handlers.
type Handler struct {
	profiles db.ProfileRepository
	ai       ai.Client
	logger   *logger.Logger
	opts     Options
}

func NewHandler(profiles db.ProfileRepository, aiClient ai.Client, logger *logger.Logger, opts Options) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 16 << 20
	}
	return &Handler{
		profiles: profiles,
		ai:       aiClient,
		logger:   logger,
		opts:     opts,
	}
}

// Routes builds the gin engine. The frontend catch-all is registered last as
// the NoRoute handler.
func (h *Handler) Routes() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = h.opts.MaxUploadBytes
	router.Use(gin.Recovery(), requestID(), requestLogger(h.logger), cors.Default())

	api := router.Group("/api")
	api.GET("/profile", h.getProfile)
	api.POST("/profile", h.saveProfile)
	api.GET("/mealplan", h.getMealPlan)
	api.POST("/analyze_image", h.analyzeImage)
	api.POST("/chat", h.chat)
	api.GET("/health", h.health)

	router.NoRoute(h.serveFrontend)
	return router
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// currentProfile loads the stored profile for read-only use. Storage errors are
// logged and treated as "no profile".
func (h *Handler) currentProfile(ctx context.Context) *models.Profile {
	p, err := h.profiles.Get(ctx)
	if err != nil {
		h.logger.Warnw("Failed to load profile, continuing without one", "error", err)
		return nil
	}
	return p
}

var availableEndpoints = []string{
	"/api/health",
	"/api/profile",
	"/api/mealplan",
	"/api/analyze_image",
	"/api/chat",
}

func (h *Handler) notFound(c *gin.Context) {
	apiError(c, http.StatusNotFound, "Not found")
}
