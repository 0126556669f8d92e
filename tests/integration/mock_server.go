package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockAccount describes one account the mock API knows about
type MockAccount struct {
	ScreenName string
	UserID     string
	TweetIDs   []string
}

// MockServer simulates the X GraphQL endpoints used by the scraper
type MockServer struct {
	server *httptest.Server

	mu           sync.Mutex
	accounts     map[string]*MockAccount
	requestCount int

	// FailWithStatus makes every request return this status when nonzero
	FailWithStatus int
}

// NewMockServer creates a mock API server with no accounts registered
func NewMockServer() *MockServer {
	m := &MockServer{
		accounts: make(map[string]*MockAccount),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// AddAccount registers an account the mock API will resolve
func (m *MockServer) AddAccount(account *MockAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ScreenName] = account
}

// URL returns the base URL of the mock server
func (m *MockServer) URL() string {
	return m.server.URL
}

// RequestCount returns the number of requests served
func (m *MockServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// Close shuts down the mock server
func (m *MockServer) Close() {
	m.server.Close()
}

func (m *MockServer) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	failStatus := m.FailWithStatus
	m.mu.Unlock()

	if failStatus != 0 {
		w.WriteHeader(failStatus)
		return
	}

	switch {
	case strings.Contains(r.URL.Path, "UserByScreenName"):
		m.handleUserLookup(w, r)
	case strings.Contains(r.URL.Path, "UserTweets"):
		m.handleUserTweets(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (m *MockServer) handleUserLookup(w http.ResponseWriter, r *http.Request) {
	var variables struct {
		ScreenName string `json:"screen_name"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("variables")), &variables); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	account, ok := m.accounts[variables.ScreenName]
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		fmt.Fprintf(w, `{"data":{"user":{}},"errors":[{"message":"Could not find user with screen_name: %s"}]}`, variables.ScreenName)
		return
	}

	fmt.Fprintf(w, `{
		"data": {
			"user": {
				"result": {
					"__typename": "User",
					"rest_id": "%s",
					"is_blue_verified": false,
					"legacy": {
						"screen_name": "%s",
						"name": "Mock %s",
						"description": "integration fixture",
						"created_at": "Wed Oct 10 20:19:24 +0000 2018",
						"followers_count": 42,
						"friends_count": 7,
						"statuses_count": %d,
						"profile_image_url_https": "https://pbs.twimg.com/profile_images/mock.jpg"
					}
				}
			}
		}
	}`, account.UserID, account.ScreenName, account.ScreenName, len(account.TweetIDs))
}

func (m *MockServer) handleUserTweets(w http.ResponseWriter, r *http.Request) {
	var variables struct {
		UserID string `json:"userId"`
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("variables")), &variables); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	var account *MockAccount
	for _, a := range m.accounts {
		if a.UserID == variables.UserID {
			account = a
			break
		}
	}
	m.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if account == nil {
		fmt.Fprint(w, `{"data":{"user":{"result":{"timeline_v2":{"timeline":{"instructions":[]}}}}}}`)
		return
	}

	// Single page, no cursor entry, so the client stops after one request
	var entries []string
	for _, id := range account.TweetIDs {
		entries = append(entries, tweetEntry(id, account))
	}

	fmt.Fprintf(w, `{
		"data": {
			"user": {
				"result": {
					"timeline_v2": {
						"timeline": {
							"instructions": [
								{"type": "TimelineAddEntries", "entries": [%s]}
							]
						}
					}
				}
			}
		}
	}`, strings.Join(entries, ","))
}

func tweetEntry(tweetID string, account *MockAccount) string {
	return fmt.Sprintf(`{
		"entryId": "tweet-%s",
		"content": {
			"entryType": "TimelineTimelineItem",
			"itemContent": {
				"itemType": "TimelineTweet",
				"tweet_results": {
					"result": {
						"__typename": "Tweet",
						"rest_id": "%s",
						"core": {
							"user_results": {
								"result": {
									"rest_id": "%s",
									"legacy": {"screen_name": "%s", "name": "Mock %s"}
								}
							}
						},
						"legacy": {
							"created_at": "Mon Mar 03 10:00:00 +0000 2025",
							"full_text": "mock tweet %s",
							"lang": "en",
							"conversation_id_str": "%s",
							"reply_count": 1,
							"retweet_count": 2,
							"favorite_count": 3,
							"quote_count": 0
						},
						"source": "<a href=\"https://mobile.twitter.com\">Twitter Web App</a>",
						"views": {"count": "100"}
					}
				}
			}
		}
	}`, tweetID, tweetID, account.UserID, account.ScreenName, account.ScreenName, tweetID, tweetID)
}
