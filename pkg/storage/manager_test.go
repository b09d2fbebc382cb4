package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("payload"))
	b := Fingerprint([]byte("payload"))
	c := Fingerprint([]byte("qayload"))

	if len(a) != 64 {
		t.Errorf("Expected 64-character fingerprint, got %d", len(a))
	}
	if a != strings.ToLower(a) {
		t.Error("Expected lowercase hex fingerprint")
	}
	if a != b {
		t.Error("Identical bytes must yield identical fingerprints")
	}
	if a == c {
		t.Error("Different bytes must yield different fingerprints")
	}
}

func TestFilenameFor(t *testing.T) {
	data := []byte("image bytes")
	fp := Fingerprint(data)

	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/photos/cat.png", fp + ".png"},
		{"https://cdn.example.com/photos/cat.jpeg?w=1280&q=80", fp + ".jpeg"},
		{"https://cdn.example.com/photos/noext", fp + ".jpg"},
		{"https://cdn.example.com/", fp + ".jpg"},
	}

	for _, tt := range tests {
		if got := FilenameFor(tt.url, data); got != tt.want {
			t.Errorf("FilenameFor(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestDestinationFor(t *testing.T) {
	tempDir := t.TempDir()
	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

	dir, err := manager.DestinationFor("https://photos.example.com/gallery?page=2", now)
	if err != nil {
		t.Fatalf("DestinationFor failed: %v", err)
	}

	want := filepath.Join(tempDir, "photos.example.com", "2026-08-25")
	if dir != want {
		t.Errorf("Expected %q, got %q", want, dir)
	}

	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Error("Expected destination directory to exist after first call")
	}

	// Same host and calendar date must be deterministic and idempotent
	again, err := manager.DestinationFor("https://photos.example.com/other", now)
	if err != nil {
		t.Fatalf("Second DestinationFor failed: %v", err)
	}
	if again != dir {
		t.Errorf("Expected same path on repeat call, got %q vs %q", again, dir)
	}

	// A URL without a host is rejected
	if _, err := manager.DestinationFor("not-a-url", now); err == nil {
		t.Error("Expected error for URL without host")
	}
}

func TestSaveImage(t *testing.T) {
	tempDir := t.TempDir()
	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	data := []byte("image payload")
	filename := FilenameFor("https://example.com/a.jpg", data)

	path, saved, err := manager.SaveImage(tempDir, filename, data)
	if err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if !saved {
		t.Error("Expected first save to write")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !bytes.Equal(content, data) {
		t.Error("File content does not match payload")
	}

	// Same content from a different URL with the same extension is a
	// duplicate, and the existing file is left untouched
	_, saved, err = manager.SaveImage(tempDir, filename, []byte("would overwrite"))
	if err != nil {
		t.Fatalf("Duplicate save failed: %v", err)
	}
	if saved {
		t.Error("Expected duplicate to be skipped")
	}

	content, _ = os.ReadFile(path)
	if !bytes.Equal(content, data) {
		t.Error("Duplicate save must not alter existing bytes")
	}

	if !manager.Exists(tempDir, filename) {
		t.Error("Expected Exists to report the saved file")
	}
}

func TestSaveImageConcurrent(t *testing.T) {
	tempDir := t.TempDir()
	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	data := []byte("contested payload")
	filename := FilenameFor("https://example.com/x.png", data)

	var wg sync.WaitGroup
	var mu sync.Mutex
	writes := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, saved, err := manager.SaveImage(tempDir, filename, data)
			if err != nil {
				t.Errorf("Concurrent save failed: %v", err)
				return
			}
			if saved {
				mu.Lock()
				writes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if writes != 1 {
		t.Errorf("Expected exactly one write, got %d", writes)
	}
}

func TestSaveDocument(t *testing.T) {
	tempDir := t.TempDir()
	manager, err := NewManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	path, err := manager.SaveDocument(tempDir, "full_page.html", "<html>original</html>")
	if err != nil {
		t.Fatalf("SaveDocument failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved document: %v", err)
	}
	if string(content) != "<html>original</html>" {
		t.Error("Document content does not match byte-for-byte")
	}

	// Documents overwrite on re-collection
	if _, err := manager.SaveDocument(tempDir, "full_page.html", "<html>updated</html>"); err != nil {
		t.Fatalf("Second SaveDocument failed: %v", err)
	}
	content, _ = os.ReadFile(path)
	if string(content) != "<html>updated</html>" {
		t.Error("Expected document to be refreshed")
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "HelloWorld"},
		{"  spaced   out  ", "spacedout"},
		{"çafé & tea", "aftea"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
		{"***", ""},
	}

	for _, tt := range tests {
		if got := SanitizeTitle(tt.title); got != tt.want {
			t.Errorf("SanitizeTitle(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
