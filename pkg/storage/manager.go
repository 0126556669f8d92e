package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimestampLayout is the filename timestamp format shared by both artifacts
// of one account iteration. Millisecond resolution keeps back-to-back
// iterations of the same username from producing colliding names.
const TimestampLayout = "20060102_150405.000"

// Manager handles artifact writes to the output directory
type Manager struct {
	outputDir string
	mu        sync.Mutex
}

// NewManager creates a new storage manager, creating the output directory
// if it does not exist
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{outputDir: outputDir}, nil
}

// OutputDir returns the base output directory
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// TweetsFilename returns the artifact name for an account's tweets
func TweetsFilename(username string, ts time.Time) string {
	return fmt.Sprintf("tweets_%s_%s.json", username, ts.Format(TimestampLayout))
}

// MetadataFilename returns the artifact name for an account's metadata
func MetadataFilename(username string, ts time.Time) string {
	return fmt.Sprintf("user_metadata_%s_%s.json", username, ts.Format(TimestampLayout))
}

// SaveJSON marshals v with indentation and writes it atomically under the
// given filename in the output directory. Returns the full path written.
func (m *Manager) SaveJSON(filename string, v interface{}) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s: %w", filename, err)
	}

	path := filepath.Join(m.outputDir, filename)

	// Write to temporary file first, then rename into place
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return "", fmt.Errorf("failed to finalize %s: %w", filename, err)
	}

	return path, nil
}

// ReadJSON reads an artifact back into v. Used by tests and tooling.
func (m *Manager) ReadJSON(filename string, v interface{}) error {
	path := filepath.Join(m.outputDir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	return nil
}
