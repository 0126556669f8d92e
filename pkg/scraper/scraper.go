// Package scraper runs the account loop: resolve each target username,
// fetch its timeline, and write the two JSON artifacts per account.
package scraper

import (
	"time"

	"xscraper/pkg/config"
	"xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/metadata"
	"xscraper/pkg/storage"
	"xscraper/pkg/twitter"
)

// TimelineClient is the API surface the scraper needs. *twitter.Client
// satisfies it; tests substitute a mock.
type TimelineClient interface {
	FetchUserByScreenName(screenName string) (*twitter.User, error)
	FetchUserTweets(userID string, screenName string, limit int) ([]twitter.Tweet, error)
}

// Summary reports the outcome of one run. Processed always equals
// Succeeded plus Failed.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
}

// Scraper drives the sequential account loop
type Scraper struct {
	client TimelineClient
	store  *storage.Manager
	cfg    *config.Config
	logger logger.Logger

	// Injected for tests
	sleep func(time.Duration)
	now   func() time.Time

	// Timestamp of the previous iteration, used to keep artifact names
	// unique when the clock has not advanced past it
	lastStamp time.Time
}

// New creates a scraper over the given client and storage manager
func New(cfg *config.Config, client TimelineClient, store *storage.Manager, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		client: client,
		store:  store,
		cfg:    cfg,
		logger: log,
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// Run processes each username in order. Accounts are never processed in
// parallel and a failed account never stops the loop; both artifacts are
// written for every account, success or not. The configured delay applies
// between accounts but not after the last one.
func (s *Scraper) Run(usernames []string) *Summary {
	summary := &Summary{}

	for i, username := range usernames {
		s.logger.InfoWithFields("processing account", map[string]interface{}{
			"username": username,
			"position": i + 1,
			"total":    len(usernames),
		})

		if s.scrapeAccount(username) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
		summary.Processed++

		if i < len(usernames)-1 && s.cfg.Scrape.Delay() > 0 {
			s.logger.DebugWithFields("sleeping before next account", map[string]interface{}{
				"delay": s.cfg.Scrape.Delay(),
			})
			s.sleep(s.cfg.Scrape.Delay())
		}
	}

	s.logger.InfoWithFields("run complete", map[string]interface{}{
		"processed": summary.Processed,
		"succeeded": summary.Succeeded,
		"failed":    summary.Failed,
	})

	return summary
}

// scrapeAccount fetches one account and writes its artifact pair. Both
// files share a single timestamp taken at the start of the iteration.
// Returns true on success.
func (s *Scraper) scrapeAccount(username string) bool {
	ts := s.stamp()

	tweets, profile, fetchErr := s.fetch(username)

	// The tweets artifact always exists, as an empty array on failure
	if tweets == nil {
		tweets = []twitter.Tweet{}
	}

	var record metadata.Record
	if fetchErr != nil {
		record = metadata.NewFailed(username, ts, profile, errors.Kind(fetchErr))
	} else {
		record = metadata.New(username, ts, len(tweets), profile)
	}

	writeErr := s.writeArtifacts(username, ts, tweets, record)

	success := fetchErr == nil && writeErr == nil
	err := fetchErr
	if err == nil {
		err = writeErr
	}
	logger.LogAccountScrape(username, len(tweets), success, err)

	return success
}

// stamp returns the timestamp for the current iteration. Iterations that
// land within the same filename resolution get bumped forward so repeated
// usernames never overwrite an earlier artifact pair.
func (s *Scraper) stamp() time.Time {
	ts := s.now()
	if !s.lastStamp.IsZero() && ts.Sub(s.lastStamp) < time.Millisecond {
		ts = s.lastStamp.Add(time.Millisecond)
	}
	s.lastStamp = ts
	return ts
}

// fetch resolves the username and pulls its timeline. The profile is
// returned even when the timeline fetch fails so the metadata record can
// include it.
func (s *Scraper) fetch(username string) ([]twitter.Tweet, *twitter.User, error) {
	profile, err := s.client.FetchUserByScreenName(username)
	if err != nil {
		return nil, nil, err
	}

	tweets, err := s.client.FetchUserTweets(profile.IDStr, username, s.cfg.Scrape.TweetLimit)
	if err != nil {
		return nil, profile, err
	}

	return tweets, profile, nil
}

// writeArtifacts persists the artifact pair for one account iteration
func (s *Scraper) writeArtifacts(username string, ts time.Time, tweets []twitter.Tweet, record metadata.Record) error {
	tweetsPath, err := s.store.SaveJSON(storage.TweetsFilename(username, ts), tweets)
	logger.LogArtifactWrite(username, tweetsPath, err)
	if err != nil {
		return err
	}

	metadataPath, err := s.store.SaveJSON(storage.MetadataFilename(username, ts), record)
	logger.LogArtifactWrite(username, metadataPath, err)
	if err != nil {
		return err
	}

	return nil
}
