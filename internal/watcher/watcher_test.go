package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherHandlesNewVideo(t *testing.T) {
	dir := t.TempDir()
	handled := make(chan string, 4)

	w, err := New(dir, func(ctx context.Context, videoPath string) error {
		handled <- videoPath
		return nil
	}, slog.Default())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// A non-video file must not reach the handler.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "clip.mp4"), []byte("fake video"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case path := <-handled:
		if filepath.Base(path) != "clip.mp4" {
			t.Errorf("handler got %q, want clip.mp4", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler never saw the dropped video")
	}

	select {
	case path := <-handled:
		t.Errorf("handler saw unexpected file %q", path)
	default:
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherSurvivesHandlerError(t *testing.T) {
	dir := t.TempDir()
	handled := make(chan string, 4)

	w, err := New(dir, func(ctx context.Context, videoPath string) error {
		handled <- videoPath
		return errors.New("boom")
	}, slog.Default())
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	for _, name := range []string{"first.mov", "second.webm"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		select {
		case <-handled:
		case <-time.After(5 * time.Second):
			t.Fatalf("handler never saw %s", name)
		}
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope"), func(context.Context, string) error { return nil }, nil)
	if err == nil {
		t.Error("expected error for missing watch directory")
	}
}

func TestIsVideoFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"clip.mp4", true},
		{"CLIP.MP4", true},
		{"tour.mov", true},
		{"old.avi", true},
		{"show.mkv", true},
		{"web.webm", true},
		{"phone.m4v", true},
		{"notes.txt", false},
		{"clip.mp4.part", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := isVideoFile(tt.path); got != tt.want {
			t.Errorf("isVideoFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
