// Package covers normalizes uploaded book cover images into uniformly
// sized JPEG thumbnails served by the desktop client.
package covers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Covers are fitted inside this box, preserving aspect ratio.
const (
	maxWidth  = 400
	maxHeight = 600
)

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
}

// IsSupported reports whether the file name has a decodable image extension.
func IsSupported(name string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(name))]
}

// Process reads the image at srcPath, fits it into the cover box and writes
// it to destDir under a fresh UUID name. It returns the generated file name.
func Process(srcPath, destDir string) (string, error) {
	img, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("open cover image: %w", err)
	}
	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create cover dir: %w", err)
	}
	name := uuid.New().String() + ".jpg"
	if err := imaging.Save(thumb, filepath.Join(destDir, name), imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("save cover: %w", err)
	}
	return name, nil
}
