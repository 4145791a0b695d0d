package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// serveFrontend serves the prebuilt bundle: the requested file if it exists,
// else index.html, else a JSON description of the API.
func (h *Handler) serveFrontend(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		h.notFound(c)
		return
	}
	urlPath := path.Clean("/" + c.Request.URL.Path)
	if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") {
		h.notFound(c)
		return
	}

	if h.opts.StaticDir != "" {
		if rel := strings.TrimPrefix(urlPath, "/"); rel != "" {
			file := filepath.Join(h.opts.StaticDir, filepath.FromSlash(rel))
			if isFile(file) {
				c.File(file)
				return
			}
		}
		if index := filepath.Join(h.opts.StaticDir, "index.html"); isFile(index) {
			c.File(index)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "✅ Backend is running successfully!",
		"available_endpoints": availableEndpoints,
		"ai_configured":       h.ai.Configured(),
		"note":                "Build the frontend and place it in " + h.opts.StaticDir,
	})
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
