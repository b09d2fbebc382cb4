package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DefaultExtension is used when the source URL carries no path suffix
const DefaultExtension = ".jpg"

// Fingerprint computes the content identity of a payload: a 64-character
// lowercase hex SHA-256 digest over the raw bytes. Identical bytes always
// yield the identical fingerprint regardless of source URL or filename.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// FilenameFor derives the content-addressed filename for a payload fetched
// from imageURL: the fingerprint plus the URL path's extension (query string
// stripped, ".jpg" when absent). The name doubles as the dedup key.
func FilenameFor(imageURL string, data []byte) string {
	ext := DefaultExtension
	if u, err := url.Parse(imageURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return Fingerprint(data) + ext
}

// Manager organizes payloads into domain-and-date folders under a root
// directory and guards the duplicate check-then-write against concurrent
// downloads of the same content.
type Manager struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex // keyed by destination path
}

// NewManager creates a storage manager rooted at the given directory
func NewManager(root string) (*Manager, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root directory is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root directory: %w", err)
	}

	return &Manager{
		root:  root,
		locks: make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the root output directory
func (m *Manager) Root() string {
	return m.root
}

// DestinationFor derives the destination folder for a page URL at the given
// collection time: {root}/{host}/{YYYY-MM-DD}. The directory tree is created
// if missing; calling twice with the same host and calendar date returns the
// same existing path.
func (m *Manager) DestinationFor(pageURL string, now time.Time) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse page URL: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("page URL %q has no host", pageURL)
	}

	dir := filepath.Join(m.root, host, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination folder: %w", err)
	}
	return dir, nil
}

// Exists reports whether a file with the given name is already present in
// the destination folder. Because filenames are content fingerprints, an
// existing name means the payload is a duplicate.
func (m *Manager) Exists(dir, filename string) bool {
	_, err := os.Stat(filepath.Join(dir, filename))
	return err == nil
}

// SaveImage writes a payload under its content-addressed filename. It
// returns the saved path and true on a write, or the existing path and
// false when a file with that fingerprint is already present. The duplicate
// check and the write are serialized per filename so two concurrent
// downloads of identical new content produce exactly one file.
func (m *Manager) SaveImage(dir, filename string, data []byte) (string, bool, error) {
	dest := filepath.Join(dir, filename)

	lock := m.lockFor(dest)
	lock.Lock()
	defer lock.Unlock()

	if m.Exists(dir, filename) {
		return dest, false, nil
	}

	if err := m.writeAtomic(dest, data); err != nil {
		return "", false, err
	}
	return dest, true, nil
}

// SaveDocument writes an article document (or raw page HTML) into the
// destination folder. Unlike images, documents overwrite: re-collecting a
// page on the same day refreshes its article file.
func (m *Manager) SaveDocument(dir, filename, content string) (string, error) {
	dest := filepath.Join(dir, filename)
	if err := m.writeAtomic(dest, []byte(content)); err != nil {
		return "", err
	}
	return dest, nil
}

// writeAtomic writes to a temporary file and renames it into place, so a
// cancelled run never leaves a partial file at the destination.
func (m *Manager) writeAtomic(dest string, data []byte) error {
	tempFile := dest + ".tmp"

	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = out.Write(data)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, dest); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// lockFor returns the mutex guarding a destination path
func (m *Manager) lockFor(dest string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[dest]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[dest] = lock
	}
	return lock
}

// SanitizeTitle strips all non-alphanumeric characters from a title and
// truncates it to 50 characters, for use as a document filename stem.
func SanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	stem := b.String()
	if len(stem) > 50 {
		stem = stem[:50]
	}
	return stem
}
