package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fitplan/internal/ai"
)

// analyzeImage handles POST /api/analyze_image with a multipart "image" field.
func (h *Handler) analyzeImage(c *gin.Context) {
	if c.Request.ContentLength > h.opts.MaxUploadBytes {
		apiError(c, http.StatusRequestEntityTooLarge, "Image too large")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			apiError(c, http.StatusRequestEntityTooLarge, "Image too large")
		case c.Request.MultipartForm != nil && len(c.Request.MultipartForm.Value["image"]) > 0:
			// A part named "image" with no filename is parsed as a plain value.
			apiError(c, http.StatusBadRequest, "Empty filename")
		default:
			apiError(c, http.StatusBadRequest, "No image uploaded")
		}
		return
	}
	if fh.Filename == "" {
		apiError(c, http.StatusBadRequest, "Empty filename")
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.logger.Errorw("Failed to open upload", "error", err)
		apiError(c, http.StatusBadRequest, "Failed to read image")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.logger.Errorw("Failed to read upload", "error", err)
		apiError(c, http.StatusBadRequest, "Failed to read image")
		return
	}

	h.storeUpload(fh.Filename, data)
	info := ai.InspectImage(data, fh.Filename)

	if !h.ai.Configured() {
		c.JSON(http.StatusOK, ai.MockAnalysis(info.Width, info.Height))
		return
	}

	analysis, err := h.ai.AnalyzeImage(c.Request.Context(), data, info.MimeType)
	if err != nil {
		h.logger.Errorw("AI image analysis failed", "error", err, "source", h.ai.Source())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "AI service error",
			"detail":    err.Error(),
			"fallback":  true,
			"mock_data": ai.MockAnalysis(info.Width, info.Height),
		})
		return
	}

	analysis.Width, analysis.Height = info.Width, info.Height
	c.JSON(http.StatusOK, analysis)
}

// storeUpload keeps a copy of the photo in the upload directory. Failures are
// logged only; the analysis does not depend on the copy.
func (h *Handler) storeUpload(filename string, data []byte) {
	if h.opts.UploadDir == "" {
		return
	}
	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		h.logger.Warnw("Failed to create upload directory", "dir", h.opts.UploadDir, "error", err)
		return
	}
	name := uuid.NewString() + "_" + sanitizeFilename(filename)
	if err := os.WriteFile(filepath.Join(h.opts.UploadDir, name), data, 0o644); err != nil {
		h.logger.Warnw("Failed to store upload", "file", name, "error", err)
	}
}

// sanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	cleaned = strings.TrimLeft(cleaned, ".")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
