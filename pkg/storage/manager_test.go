package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")

	if _, err := NewManager(dir); err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Error("Output directory was not created")
	}
}

func TestArtifactFilenames(t *testing.T) {
	ts := time.Date(2025, 3, 5, 14, 30, 9, 120000000, time.UTC)

	if got := TweetsFilename("xdevelopers", ts); got != "tweets_xdevelopers_20250305_143009.120.json" {
		t.Errorf("Unexpected tweets filename: %s", got)
	}
	if got := MetadataFilename("xdevelopers", ts); got != "user_metadata_xdevelopers_20250305_143009.120.json" {
		t.Errorf("Unexpected metadata filename: %s", got)
	}
}

func TestArtifactFilenamesDistinctWithinSameSecond(t *testing.T) {
	first := time.Date(2025, 3, 5, 14, 30, 9, 0, time.UTC)
	second := first.Add(time.Millisecond)

	if TweetsFilename("alice", first) == TweetsFilename("alice", second) {
		t.Error("Timestamps a millisecond apart must yield distinct filenames")
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	input := map[string]interface{}{"username": "xdevelopers", "postCount": float64(3)}
	path, err := manager.SaveJSON("test.json", input)
	if err != nil {
		t.Fatalf("Failed to save JSON: %v", err)
	}

	if filepath.Base(path) != "test.json" {
		t.Errorf("Unexpected path: %s", path)
	}

	var output map[string]interface{}
	if err := manager.ReadJSON("test.json", &output); err != nil {
		t.Fatalf("Failed to read JSON back: %v", err)
	}
	if output["username"] != "xdevelopers" || output["postCount"] != float64(3) {
		t.Errorf("Round trip mismatch: %v", output)
	}
}

func TestSaveJSONIsIndented(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := manager.SaveJSON("indent.json", map[string]string{"a": "b"})
	if err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "\n  ") {
		t.Error("Expected indented JSON output")
	}
}

func TestSaveJSONEmptySliceStaysArray(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, err := manager.SaveJSON("empty.json", []struct{}{})
	if err != nil {
		t.Fatal(err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(content)) != "[]" {
		t.Errorf("Expected empty JSON array, got %q", string(content))
	}
}

func TestSaveJSONLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := manager.SaveJSON("clean.json", map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".tmp") {
			t.Errorf("Leftover temp file: %s", entry.Name())
		}
	}
}
