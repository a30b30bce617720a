package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one newly dropped video file.
type Handler func(ctx context.Context, videoPath string) error

// Watcher monitors a drop folder and hands each new video to the handler.
// Videos are processed one at a time; the pipeline itself is sequential.
type Watcher struct {
	inputDir string
	handler  Handler
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

func New(inputDir string, handler Handler, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsw.Add(inputDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		inputDir: inputDir,
		handler:  handler,
		logger:   logger,
		fsw:      fsw,
	}, nil
}

// Start blocks, processing new videos until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Info("watching for new videos", "dir", w.inputDir)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Op.Has(fsnotify.Create) || !isVideoFile(event.Name) {
				continue
			}

			w.logger.Info("new video detected", "path", event.Name)

			// Give the copy a moment to finish before ffmpeg opens it.
			time.Sleep(500 * time.Millisecond)

			if err := w.handler(ctx, event.Name); err != nil {
				w.logger.Error("failed to process video", "path", event.Name, "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

func isVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v":
		return true
	}
	return false
}
