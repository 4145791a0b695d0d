package ai

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

// ImageInfo describes an uploaded photo. Width and Height are 0 when the
// format can't be decoded.
type ImageInfo struct {
	Width    int
	Height   int
	MimeType string
}

// InspectImage reads the image header and works out the MIME type to send
// upstream: the sniffed type when it is an image, else one derived from the
// file extension.
func InspectImage(data []byte, filename string) ImageInfo {
	var info ImageInfo
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		info.Width, info.Height = cfg.Width, cfg.Height
	}

	if mt := mimetype.Detect(data); strings.HasPrefix(mt.String(), "image/") {
		info.MimeType = mt.String()
		return info
	}
	info.MimeType = mimeFromExtension(filename)
	return info
}

func mimeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
