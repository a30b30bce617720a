package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	ls, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	return ls
}

func TestSaveAndOpenFile(t *testing.T) {
	ls := newTestStorage(t)

	content := "fake video bytes"
	path, err := ls.SaveFile(strings.NewReader(content), FileInfo{
		Filename:    "tour.mp4",
		ContentType: "video/mp4",
		Size:        int64(len(content)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Ext(path) != ".mp4" {
		t.Errorf("stored path %q should keep the extension", path)
	}
	if strings.Contains(path, "tour") {
		t.Errorf("stored path %q should not reuse the upload name", path)
	}

	f, err := ls.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open stored file: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(data) != content {
		t.Errorf("stored content = %q, want %q", data, content)
	}
}

func TestSaveFileDefaultExtension(t *testing.T) {
	ls := newTestStorage(t)

	path, err := ls.SaveFile(strings.NewReader("x"), FileInfo{Filename: "noext"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".mp4" {
		t.Errorf("path %q should default to .mp4", path)
	}
}

func TestDeleteFile(t *testing.T) {
	ls := newTestStorage(t)

	path, err := ls.SaveFile(strings.NewReader("x"), FileInfo{Filename: "clip.mov"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ls.DeleteFile(path); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	if _, err := ls.OpenFile(path); err == nil {
		t.Error("file should be gone after delete")
	}

	if err := ls.DeleteFile(path); err == nil {
		t.Error("deleting a missing file should fail")
	}
}

func TestFullPathRejectsTraversal(t *testing.T) {
	ls := newTestStorage(t)

	for _, path := range []string{"../outside.mp4", "a/../../outside.mp4", "/etc/passwd"} {
		if _, err := ls.FullPath(path); err == nil {
			t.Errorf("FullPath(%q) should be rejected", path)
		}
	}
}

func TestFullPathResolvesInsideBase(t *testing.T) {
	ls := newTestStorage(t)

	full, err := ls.FullPath("clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(full) != "clip.mp4" {
		t.Errorf("resolved path %q", full)
	}
	if !filepath.IsAbs(full) && !strings.HasPrefix(full, ls.basePath) {
		t.Errorf("resolved path %q not under base %q", full, ls.basePath)
	}
}

func TestOpenFileMissing(t *testing.T) {
	ls := newTestStorage(t)

	_, err := ls.OpenFile("missing.mp4")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}
