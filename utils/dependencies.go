package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// ValidateProbeDependencies checks that ffprobe is available in PATH
func ValidateProbeDependencies() error {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("ffprobe not found in PATH. %s", getInstallationInstructions())
	}
	return nil
}

// HasXDGMime reports whether xdg-mime is available for MIME classification.
// Without it the scanner falls back to extension-based classification.
func HasXDGMime() bool {
	_, err := exec.LookPath("xdg-mime")
	return err == nil
}

// getInstallationInstructions returns platform-specific installation instructions
func getInstallationInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return "Install with: apt-get install ffmpeg (Ubuntu/Debian) or yum install ffmpeg (CentOS/RHEL)"
	case "windows":
		return "Download from https://ffmpeg.org/download.html and add to PATH"
	default:
		return "Download from https://ffmpeg.org/download.html"
	}
}
