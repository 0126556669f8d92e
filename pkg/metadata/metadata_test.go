package metadata

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"xscraper/pkg/twitter"
)

func TestRecordSuccessJSON(t *testing.T) {
	scrapedAt := time.Date(2025, 3, 5, 14, 30, 9, 0, time.UTC)
	profile := &twitter.User{IDStr: "783214", Username: "X"}

	record := New("X", scrapedAt, 10, profile)

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Failed to marshal record: %v", err)
	}

	out := string(data)
	if !strings.Contains(out, `"error":null`) {
		t.Errorf("Success record should serialize error as null: %s", out)
	}
	if !strings.Contains(out, `"postCount":10`) {
		t.Errorf("Missing postCount: %s", out)
	}
	if !strings.Contains(out, `"scrapedAt":"2025-03-05T14:30:09Z"`) {
		t.Errorf("Expected RFC3339 scrapedAt: %s", out)
	}
	if record.Failed() {
		t.Error("Success record should not report failed")
	}
}

func TestRecordFailureJSON(t *testing.T) {
	record := NewFailed("ghost", time.Now(), nil, "not_found")

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)
	if !strings.Contains(out, `"error":"not_found"`) {
		t.Errorf("Expected error kind in JSON: %s", out)
	}
	if !strings.Contains(out, `"profile":null`) {
		t.Errorf("Expected null profile: %s", out)
	}
	if !strings.Contains(out, `"postCount":0`) {
		t.Errorf("Expected zero postCount: %s", out)
	}
	if !record.Failed() {
		t.Error("Failure record should report failed")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	original := NewFailed("bob", time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), nil, "auth")

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}

	if decoded.Username != "bob" {
		t.Errorf("Username mismatch: %s", decoded.Username)
	}
	if decoded.Error == nil || *decoded.Error != "auth" {
		t.Errorf("Error kind mismatch: %v", decoded.Error)
	}
	if !decoded.ScrapedAt.Equal(original.ScrapedAt) {
		t.Errorf("ScrapedAt mismatch: %v", decoded.ScrapedAt)
	}
}
