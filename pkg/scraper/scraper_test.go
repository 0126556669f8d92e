package scraper

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xscraper/pkg/config"
	"xscraper/pkg/errors"
	"xscraper/pkg/metadata"
	"xscraper/pkg/storage"
	"xscraper/pkg/twitter"
)

type mockClient struct {
	users      map[string]*twitter.User
	tweets     map[string][]twitter.Tweet
	lookupErr  map[string]error
	tweetsErr  map[string]error
	lookups    []string
	fetchCalls []string
}

func (m *mockClient) FetchUserByScreenName(screenName string) (*twitter.User, error) {
	m.lookups = append(m.lookups, screenName)
	if err, ok := m.lookupErr[screenName]; ok {
		return nil, err
	}
	user, ok := m.users[screenName]
	if !ok {
		return nil, errors.New(errors.ErrorTypeNotFound, "user not found: "+screenName, 0)
	}
	return user, nil
}

func (m *mockClient) FetchUserTweets(userID string, screenName string, limit int) ([]twitter.Tweet, error) {
	m.fetchCalls = append(m.fetchCalls, screenName)
	if err, ok := m.tweetsErr[screenName]; ok {
		return nil, err
	}
	tweets := m.tweets[screenName]
	if limit != -1 && len(tweets) > limit {
		tweets = tweets[:limit]
	}
	return tweets, nil
}

func mockUser(username, id string) *twitter.User {
	return &twitter.User{IDStr: id, Username: username}
}

func mockTweet(id string) twitter.Tweet {
	return twitter.Tweet{IDStr: id, RawContent: "tweet " + id}
}

type fixture struct {
	scraper *Scraper
	client  *mockClient
	dir     string
	sleeps  []time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Scrape.DelayBetweenAccounts = 0.5
	cfg.Scrape.TweetLimit = -1

	client := &mockClient{
		users:     make(map[string]*twitter.User),
		tweets:    make(map[string][]twitter.Tweet),
		lookupErr: make(map[string]error),
		tweetsErr: make(map[string]error),
	}

	f := &fixture{client: client, dir: dir}

	s := New(cfg, client, store, nil)
	s.sleep = func(d time.Duration) { f.sleeps = append(f.sleeps, d) }
	clock := time.Date(2025, 3, 5, 14, 30, 9, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	f.scraper = s

	return f
}

func (f *fixture) listFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func (f *fixture) readMetadata(t *testing.T, name string) metadata.Record {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		t.Fatal(err)
	}
	var record metadata.Record
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatal(err)
	}
	return record
}

func TestRunSuccess(t *testing.T) {
	f := newFixture(t)
	f.client.users["alice"] = mockUser("alice", "111")
	f.client.tweets["alice"] = []twitter.Tweet{mockTweet("1"), mockTweet("2")}

	summary := f.scraper.Run([]string{"alice"})

	if summary.Processed != 1 || summary.Succeeded != 1 || summary.Failed != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	files := f.listFiles(t)
	if len(files) != 2 {
		t.Fatalf("Expected 2 artifacts, got %v", files)
	}

	var tweetsFile, metadataFile string
	for _, name := range files {
		if strings.HasPrefix(name, "tweets_alice_") {
			tweetsFile = name
		}
		if strings.HasPrefix(name, "user_metadata_alice_") {
			metadataFile = name
		}
	}
	if tweetsFile == "" || metadataFile == "" {
		t.Fatalf("Missing artifact pair: %v", files)
	}

	var tweets []twitter.Tweet
	data, err := os.ReadFile(filepath.Join(f.dir, tweetsFile))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &tweets); err != nil {
		t.Fatal(err)
	}
	if len(tweets) != 2 {
		t.Errorf("Expected 2 tweets in artifact, got %d", len(tweets))
	}

	record := f.readMetadata(t, metadataFile)
	if record.Username != "alice" || record.PostCount != 2 {
		t.Errorf("Unexpected record: %+v", record)
	}
	if record.Error != nil {
		t.Errorf("Expected null error, got %v", *record.Error)
	}
}

func TestRunSharedTimestamp(t *testing.T) {
	f := newFixture(t)
	f.client.users["alice"] = mockUser("alice", "111")

	f.scraper.Run([]string{"alice"})

	files := f.listFiles(t)
	if len(files) != 2 {
		t.Fatalf("Expected 2 artifacts, got %v", files)
	}

	extractTS := func(name string) string {
		trimmed := strings.TrimSuffix(name, ".json")
		parts := strings.Split(trimmed, "_")
		return strings.Join(parts[len(parts)-2:], "_")
	}

	if extractTS(files[0]) != extractTS(files[1]) {
		t.Errorf("Artifact pair has mismatched timestamps: %v", files)
	}
}

func TestRunFailedAccountStillWritesArtifacts(t *testing.T) {
	f := newFixture(t)
	f.client.lookupErr["bob"] = errors.New(errors.ErrorTypeAuth, "session rejected", 401)

	summary := f.scraper.Run([]string{"bob"})

	if summary.Failed != 1 || summary.Succeeded != 0 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	files := f.listFiles(t)
	if len(files) != 2 {
		t.Fatalf("Failed account must still produce both artifacts, got %v", files)
	}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			t.Fatal(err)
		}
		if strings.HasPrefix(name, "tweets_") {
			if strings.TrimSpace(string(data)) != "[]" {
				t.Errorf("Expected empty tweets array, got %q", string(data))
			}
		} else {
			var record metadata.Record
			if err := json.Unmarshal(data, &record); err != nil {
				t.Fatal(err)
			}
			if record.Error == nil || *record.Error != "auth" {
				t.Errorf("Expected auth error kind, got %+v", record.Error)
			}
			if record.PostCount != 0 {
				t.Errorf("Expected zero postCount, got %d", record.PostCount)
			}
			if record.Profile != nil {
				t.Error("Lookup failure should leave profile null")
			}
		}
	}
}

func TestRunTimelineFailureKeepsProfile(t *testing.T) {
	f := newFixture(t)
	f.client.users["carol"] = mockUser("carol", "333")
	f.client.tweetsErr["carol"] = errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded", 429)

	summary := f.scraper.Run([]string{"carol"})
	if summary.Failed != 1 {
		t.Fatalf("Expected failure, got %+v", summary)
	}

	for _, name := range f.listFiles(t) {
		if !strings.HasPrefix(name, "user_metadata_") {
			continue
		}
		record := f.readMetadata(t, name)
		if record.Error == nil || *record.Error != "rate_limited" {
			t.Errorf("Expected rate_limited kind, got %v", record.Error)
		}
		if record.Profile == nil || record.Profile.IDStr != "333" {
			t.Error("Expected profile retained when only the timeline fetch fails")
		}
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)
	f.client.users["alice"] = mockUser("alice", "111")
	f.client.tweets["alice"] = []twitter.Tweet{mockTweet("1")}
	f.client.users["carol"] = mockUser("carol", "333")

	summary := f.scraper.Run([]string{"alice", "ghost", "carol"})

	if summary.Processed != 3 {
		t.Errorf("Expected 3 processed, got %d", summary.Processed)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
	if summary.Processed != summary.Succeeded+summary.Failed {
		t.Error("Processed must equal Succeeded + Failed")
	}

	if len(f.client.lookups) != 3 {
		t.Errorf("All usernames should be looked up, got %v", f.client.lookups)
	}

	// Two artifacts per account, failed one included
	if files := f.listFiles(t); len(files) != 6 {
		t.Errorf("Expected 6 artifacts, got %v", files)
	}
}

func TestRunSleepsBetweenAccountsOnly(t *testing.T) {
	f := newFixture(t)
	f.client.users["alice"] = mockUser("alice", "111")
	f.client.users["bob"] = mockUser("bob", "222")
	f.client.users["carol"] = mockUser("carol", "333")

	f.scraper.Run([]string{"alice", "bob", "carol"})

	if len(f.sleeps) != 2 {
		t.Fatalf("Expected 2 sleeps for 3 accounts, got %d", len(f.sleeps))
	}
	for _, d := range f.sleeps {
		if d != 500*time.Millisecond {
			t.Errorf("Expected 500ms delay, got %v", d)
		}
	}
}

func TestRunNoSleepForSingleAccount(t *testing.T) {
	f := newFixture(t)
	f.client.users["alice"] = mockUser("alice", "111")

	f.scraper.Run([]string{"alice"})

	if len(f.sleeps) != 0 {
		t.Errorf("Expected no sleeps for a single account, got %d", len(f.sleeps))
	}
}

func TestRunZeroDelaySkipsSleep(t *testing.T) {
	f := newFixture(t)
	f.scraper.cfg.Scrape.DelayBetweenAccounts = 0
	f.client.users["alice"] = mockUser("alice", "111")
	f.client.users["bob"] = mockUser("bob", "222")

	f.scraper.Run([]string{"alice", "bob"})

	if len(f.sleeps) != 0 {
		t.Errorf("Expected no sleeps with zero delay, got %d", len(f.sleeps))
	}
}

func TestRunEmptyList(t *testing.T) {
	f := newFixture(t)

	summary := f.scraper.Run(nil)

	if summary.Processed != 0 || summary.Succeeded != 0 || summary.Failed != 0 {
		t.Errorf("Expected zero summary, got %+v", summary)
	}
	if files := f.listFiles(t); len(files) != 0 {
		t.Errorf("Expected no artifacts, got %v", files)
	}
}

func TestRunRepeatedAccountsGetDistinctArtifacts(t *testing.T) {
	f := newFixture(t)
	f.client.users["alice"] = mockUser("alice", "111")

	f.scraper.Run([]string{"alice", "alice"})

	files := f.listFiles(t)
	if len(files) != 4 {
		t.Errorf("Expected 4 distinct artifacts for repeated account, got %v", files)
	}
}

func TestRunRepeatedAccountsFrozenClock(t *testing.T) {
	f := newFixture(t)
	f.scraper.cfg.Scrape.DelayBetweenAccounts = 0
	f.client.users["alice"] = mockUser("alice", "111")

	// Iterations can start within the same instant; artifact pairs must
	// still never overwrite each other
	frozen := time.Date(2025, 3, 5, 14, 30, 9, 0, time.UTC)
	f.scraper.now = func() time.Time { return frozen }

	f.scraper.Run([]string{"alice", "alice", "alice"})

	files := f.listFiles(t)
	if len(files) != 6 {
		t.Fatalf("Expected 6 distinct artifacts for 3 iterations, got %v", files)
	}
}

func TestRunRepeatedAccountsRealClock(t *testing.T) {
	f := newFixture(t)
	f.scraper.cfg.Scrape.DelayBetweenAccounts = 0
	f.scraper.now = time.Now
	f.client.users["alice"] = mockUser("alice", "111")

	f.scraper.Run([]string{"alice", "alice"})

	if files := f.listFiles(t); len(files) != 4 {
		t.Errorf("Expected 4 distinct artifacts under the system clock, got %v", files)
	}
}

func TestRunPassesTweetLimit(t *testing.T) {
	f := newFixture(t)
	f.scraper.cfg.Scrape.TweetLimit = 1
	f.client.users["alice"] = mockUser("alice", "111")
	f.client.tweets["alice"] = []twitter.Tweet{mockTweet("1"), mockTweet("2"), mockTweet("3")}

	f.scraper.Run([]string{"alice"})

	for _, name := range f.listFiles(t) {
		if !strings.HasPrefix(name, "user_metadata_") {
			continue
		}
		record := f.readMetadata(t, name)
		if record.PostCount != 1 {
			t.Errorf("Expected limit to cap postCount at 1, got %d", record.PostCount)
		}
	}
}
