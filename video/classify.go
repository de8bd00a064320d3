package video

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Classifier decides whether a path points at a video file. Implementations
// are injected into the scanner; a classification failure skips only that
// file.
type Classifier interface {
	IsVideo(ctx context.Context, path string) (bool, error)
}

// XDGMime classifies files through `xdg-mime query filetype`, matching any
// MIME type in the video/ category. The zero value is ready to use.
type XDGMime struct{}

// IsVideo reports whether xdg-mime resolves the file to a video/* MIME type.
func (XDGMime) IsVideo(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, "xdg-mime", "query", "filetype", path)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return false, fmt.Errorf("xdg-mime timed out: %w", ctx.Err())
		}
		return false, fmt.Errorf("could not determine MIME type: %w\nxdg-mime output: %s", err, firstLine(stderr.String()))
	}

	mimeType := strings.TrimSpace(string(output))
	return strings.HasPrefix(mimeType, "video/"), nil
}

// videoExtensions is the known video extension set, lowercase with dot.
var videoExtensions = []string{".mp4", ".webm", ".mov", ".flv", ".mkv", ".avi", ".wmv", ".mpg"}

// Extension classifies files by extension alone. It backs the tool on
// systems without xdg-mime and never fails.
type Extension struct{}

// IsVideo reports whether the file has a known video extension.
func (Extension) IsVideo(_ context.Context, path string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range videoExtensions {
		if v == ext {
			return true, nil
		}
	}
	return false, nil
}
