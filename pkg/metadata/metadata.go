// Package metadata defines the per-account metadata record written next to
// each tweets artifact.
package metadata

import (
	"time"

	"xscraper/pkg/twitter"
)

// Record is the schema of the user_metadata artifact. Error is nil on
// success; on failure it holds the failure kind (auth, rate_limited,
// not_found, network, parsing, server_error, unknown).
type Record struct {
	Username  string        `json:"username"`
	ScrapedAt time.Time     `json:"scrapedAt"`
	PostCount int           `json:"postCount"`
	Profile   *twitter.User `json:"profile"`
	Error     *string       `json:"error"`
}

// New builds a success record
func New(username string, scrapedAt time.Time, postCount int, profile *twitter.User) Record {
	return Record{
		Username:  username,
		ScrapedAt: scrapedAt,
		PostCount: postCount,
		Profile:   profile,
	}
}

// NewFailed builds a failure record with the given error kind. The profile
// is included when the lookup succeeded before the timeline fetch failed.
func NewFailed(username string, scrapedAt time.Time, profile *twitter.User, kind string) Record {
	return Record{
		Username:  username,
		ScrapedAt: scrapedAt,
		Profile:   profile,
		Error:     &kind,
	}
}

// Failed reports whether the record describes a failed account
func (r *Record) Failed() bool {
	return r.Error != nil
}
