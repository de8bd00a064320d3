package video

import (
	"context"
	"testing"
)

func TestExtensionClassifier(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/videos/movie.mp4", true},
		{"/videos/movie.mkv", true},
		{"/videos/MOVIE.MP4", true}, // extension casing is irrelevant
		{"/videos/clip.webm", true},
		{"/videos/old.wmv", true},
		{"/videos/notes.txt", false},
		{"/videos/cover.jpg", false},
		{"/videos/noextension", false},
		{"/videos/archive.mp4.bak", false},
	}

	c := Extension{}
	for _, tt := range tests {
		got, err := c.IsVideo(context.Background(), tt.path)
		if err != nil {
			t.Errorf("IsVideo(%q) unexpected error: %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("IsVideo(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
