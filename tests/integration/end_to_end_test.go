package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xscraper/pkg/config"
	"xscraper/pkg/metadata"
	"xscraper/pkg/scraper"
	"xscraper/pkg/storage"
	"xscraper/pkg/targets"
	"xscraper/pkg/twitter"
)

func testConfig(outputDir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Twitter.AuthToken = "test_auth_token_0123456789abcdef01234567"
	cfg.Twitter.CSRFToken = strings.Repeat("c", 32)
	cfg.Scrape.DelayBetweenAccounts = 0
	cfg.Scrape.TweetLimit = -1
	cfg.Output.BaseDirectory = outputDir
	cfg.Retry.MaxAttempts = 2
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.Retry.MaxDelay = 5 * time.Millisecond
	return cfg
}

// TestEndToEndRun drives the full pipeline against the mock API: accounts
// file in, artifact pairs out.
func TestEndToEndRun(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()

	mock.AddAccount(&MockAccount{
		ScreenName: "alice",
		UserID:     "1001",
		TweetIDs:   []string{"9001", "9002", "9003"},
	})
	mock.AddAccount(&MockAccount{
		ScreenName: "bob",
		UserID:     "1002",
		TweetIDs:   []string{"9101"},
	})

	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "target_accounts.txt")
	if err := os.WriteFile(accountsPath, []byte("@alice\n# commented\nno_such_user\nbob\n"), 0644); err != nil {
		t.Fatal(err)
	}

	outputDir := filepath.Join(dir, "output")
	cfg := testConfig(outputDir)

	usernames, err := targets.Load(accountsPath)
	if err != nil {
		t.Fatalf("Failed to load accounts file: %v", err)
	}
	if len(usernames) != 3 {
		t.Fatalf("Expected 3 usernames, got %v", usernames)
	}

	client := twitter.NewClient(cfg, nil)
	client.SetBaseURL(mock.URL())

	store, err := storage.NewManager(outputDir)
	if err != nil {
		t.Fatal(err)
	}

	summary := scraper.New(cfg, client, store, nil).Run(usernames)

	if summary.Processed != 3 || summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 {
		t.Fatalf("Expected 6 artifacts, got %d", len(entries))
	}

	var aliceTweets, missingMetadata string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "tweets_alice_") {
			aliceTweets = e.Name()
		}
		if strings.HasPrefix(e.Name(), "user_metadata_no_such_user_") {
			missingMetadata = e.Name()
		}
	}
	if aliceTweets == "" || missingMetadata == "" {
		t.Fatalf("Missing expected artifacts: %v", entries)
	}

	var tweets []twitter.Tweet
	readJSON(t, filepath.Join(outputDir, aliceTweets), &tweets)
	if len(tweets) != 3 {
		t.Fatalf("Expected 3 tweets for alice, got %d", len(tweets))
	}
	if tweets[0].IDStr != "9001" || tweets[2].IDStr != "9003" {
		t.Errorf("Tweet order not preserved: %s, %s", tweets[0].IDStr, tweets[2].IDStr)
	}
	if tweets[0].User.Username != "alice" {
		t.Errorf("Unexpected tweet author: %s", tweets[0].User.Username)
	}
	if tweets[0].SourceLabel == nil || *tweets[0].SourceLabel != "Twitter Web App" {
		t.Errorf("Source label not extracted: %v", tweets[0].SourceLabel)
	}

	var record metadata.Record
	readJSON(t, filepath.Join(outputDir, missingMetadata), &record)
	if record.Error == nil || *record.Error != "not_found" {
		t.Errorf("Expected not_found error kind, got %v", record.Error)
	}
	if record.Profile != nil {
		t.Error("Unknown user should have no profile")
	}
}

// TestEndToEndServerErrors verifies that persistent server failures mark
// every account failed but still produce artifacts and a zero-success summary.
func TestEndToEndServerErrors(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.FailWithStatus = 503

	outputDir := t.TempDir()
	cfg := testConfig(outputDir)

	client := twitter.NewClient(cfg, nil)
	client.SetBaseURL(mock.URL())

	store, err := storage.NewManager(outputDir)
	if err != nil {
		t.Fatal(err)
	}

	summary := scraper.New(cfg, client, store, nil).Run([]string{"alice"})

	if summary.Succeeded != 0 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	// Server errors are retryable, so the lookup should have been attempted
	// more than once
	if mock.RequestCount() < 2 {
		t.Errorf("Expected retried requests, got %d", mock.RequestCount())
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected artifact pair despite failure, got %d files", len(entries))
	}

	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "user_metadata_") {
			continue
		}
		var record metadata.Record
		readJSON(t, filepath.Join(outputDir, e.Name()), &record)
		if record.Error == nil || *record.Error != "server_error" {
			t.Errorf("Expected server_error kind, got %v", record.Error)
		}
	}
}

// TestEndToEndProfileMetadata checks the profile block written for a
// successful account.
func TestEndToEndProfileMetadata(t *testing.T) {
	mock := NewMockServer()
	defer mock.Close()
	mock.AddAccount(&MockAccount{
		ScreenName: "carol",
		UserID:     "2002",
		TweetIDs:   []string{"9201", "9202"},
	})

	outputDir := t.TempDir()
	cfg := testConfig(outputDir)

	client := twitter.NewClient(cfg, nil)
	client.SetBaseURL(mock.URL())

	store, err := storage.NewManager(outputDir)
	if err != nil {
		t.Fatal(err)
	}

	summary := scraper.New(cfg, client, store, nil).Run([]string{"carol"})
	if summary.Succeeded != 1 {
		t.Fatalf("Expected success, got %+v", summary)
	}

	entries, _ := os.ReadDir(outputDir)
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "user_metadata_") {
			continue
		}
		var record metadata.Record
		readJSON(t, filepath.Join(outputDir, e.Name()), &record)

		if record.PostCount != 2 {
			t.Errorf("Expected postCount 2, got %d", record.PostCount)
		}
		if record.Profile == nil {
			t.Fatal("Expected profile in metadata")
		}
		if record.Profile.IDStr != "2002" || record.Profile.Username != "carol" {
			t.Errorf("Unexpected profile: %+v", record.Profile)
		}
		if record.Profile.FollowersCount != 42 {
			t.Errorf("Expected followers from fixture, got %d", record.Profile.FollowersCount)
		}
	}
}

func readJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
}
