package twitter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"xscraper/pkg/errors"
)

// createdAtLayout is the timestamp format used by the legacy API fields,
// e.g. "Wed Oct 10 20:19:24 +0000 2018"
const createdAtLayout = time.RubyDate

// Wire types for the GraphQL responses. Only the fields the artifacts need
// are mapped; everything else is ignored during decoding.

type gqlError struct {
	Message string `json:"message"`
}

type userResponse struct {
	Data struct {
		User struct {
			Result *userResult `json:"result"`
		} `json:"user"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type timelineResponse struct {
	Data struct {
		User struct {
			Result struct {
				TimelineV2 struct {
					Timeline struct {
						Instructions []timelineInstruction `json:"instructions"`
					} `json:"timeline"`
				} `json:"timeline_v2"`
			} `json:"result"`
		} `json:"user"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type timelineInstruction struct {
	Type    string          `json:"type"`
	Entries []timelineEntry `json:"entries"`
	Entry   *timelineEntry  `json:"entry"`
}

type timelineEntry struct {
	EntryID string       `json:"entryId"`
	Content entryContent `json:"content"`
}

type entryContent struct {
	EntryType   string       `json:"entryType"`
	ItemContent *itemContent `json:"itemContent"`
	CursorType  string       `json:"cursorType"`
	Value       string       `json:"value"`
}

type itemContent struct {
	ItemType     string `json:"itemType"`
	TweetResults struct {
		Result *tweetResult `json:"result"`
	} `json:"tweet_results"`
}

type tweetResult struct {
	TypeName string       `json:"__typename"`
	Tweet    *tweetResult `json:"tweet"`
	RestID   string       `json:"rest_id"`
	Core     struct {
		UserResults struct {
			Result *userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy    *tweetLegacy `json:"legacy"`
	Source    string       `json:"source"`
	NoteTweet *struct {
		NoteTweetResults struct {
			Result struct {
				Text      string `json:"text"`
				EntitySet struct {
					URLs []wireURL `json:"urls"`
				} `json:"entity_set"`
			} `json:"result"`
		} `json:"note_tweet_results"`
	} `json:"note_tweet"`
	Views struct {
		Count string `json:"count"`
	} `json:"views"`
}

type tweetLegacy struct {
	CreatedAt         string        `json:"created_at"`
	FullText          string        `json:"full_text"`
	Lang              string        `json:"lang"`
	ConversationIDStr string        `json:"conversation_id_str"`
	ReplyCount        int           `json:"reply_count"`
	RetweetCount      int           `json:"retweet_count"`
	FavoriteCount     int           `json:"favorite_count"`
	QuoteCount        int           `json:"quote_count"`
	InReplyToStatusID *string       `json:"in_reply_to_status_id_str"`
	InReplyToUserID   *string       `json:"in_reply_to_user_id_str"`
	PossiblySensitive *bool         `json:"possibly_sensitive"`
	Entities          tweetEntities `json:"entities"`
}

type tweetEntities struct {
	Hashtags []struct {
		Text string `json:"text"`
	} `json:"hashtags"`
	Symbols []struct {
		Text string `json:"text"`
	} `json:"symbols"`
	UserMentions []wireMention `json:"user_mentions"`
	URLs         []wireURL     `json:"urls"`
}

type wireMention struct {
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

type wireURL struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
}

type userResult struct {
	TypeName       string     `json:"__typename"`
	RestID         string     `json:"rest_id"`
	IsBlueVerified *bool      `json:"is_blue_verified"`
	VerifiedType   *string    `json:"verified_type"`
	Legacy         userLegacy `json:"legacy"`
}

type userLegacy struct {
	ScreenName        string   `json:"screen_name"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	CreatedAt         string   `json:"created_at"`
	FollowersCount    int      `json:"followers_count"`
	FriendsCount      int      `json:"friends_count"`
	StatusesCount     int      `json:"statuses_count"`
	FavouritesCount   int      `json:"favourites_count"`
	ListedCount       int      `json:"listed_count"`
	MediaCount        int      `json:"media_count"`
	Location          string   `json:"location"`
	ProfileImageURL   string   `json:"profile_image_url_https"`
	ProfileBannerURL  *string  `json:"profile_banner_url"`
	Protected         *bool    `json:"protected"`
	Verified          *bool    `json:"verified"`
	PinnedTweetIDsStr []string `json:"pinned_tweet_ids_str"`
	Entities          struct {
		Description struct {
			URLs []wireURL `json:"urls"`
		} `json:"description"`
		URL struct {
			URLs []wireURL `json:"urls"`
		} `json:"url"`
	} `json:"entities"`
}

// hasUserNotFoundError reports whether the GraphQL error list says the
// requested user does not exist
func hasUserNotFoundError(errs []gqlError) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, "Could not find user") {
			return true
		}
	}
	return false
}

// parseUserResult flattens a GraphQL user result into a User
func parseUserResult(res *userResult) (*User, error) {
	if res == nil || res.RestID == "" {
		return nil, errors.New(errors.ErrorTypeParsing, "user result missing rest_id", 0)
	}

	id, err := strconv.ParseInt(res.RestID, 10, 64)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing, "invalid user id: "+res.RestID, 0)
	}

	created, err := time.Parse(createdAtLayout, res.Legacy.CreatedAt)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing, "invalid user created_at: "+res.Legacy.CreatedAt, 0)
	}

	descLinks := parseLinks(res.Legacy.Entities.Description.URLs)
	descLinks = append(descLinks, parseLinks(res.Legacy.Entities.URL.URLs)...)

	var pinned []int64
	for _, pid := range res.Legacy.PinnedTweetIDsStr {
		if v, err := strconv.ParseInt(pid, 10, 64); err == nil {
			pinned = append(pinned, v)
		}
	}

	return &User{
		ID:               id,
		IDStr:            res.RestID,
		URL:              ProfileURL(res.Legacy.ScreenName),
		Username:         res.Legacy.ScreenName,
		DisplayName:      res.Legacy.Name,
		RawDescription:   res.Legacy.Description,
		Created:          created,
		FollowersCount:   res.Legacy.FollowersCount,
		FriendsCount:     res.Legacy.FriendsCount,
		StatusesCount:    res.Legacy.StatusesCount,
		FavouritesCount:  res.Legacy.FavouritesCount,
		ListedCount:      res.Legacy.ListedCount,
		MediaCount:       res.Legacy.MediaCount,
		Location:         res.Legacy.Location,
		ProfileImageURL:  res.Legacy.ProfileImageURL,
		ProfileBannerURL: res.Legacy.ProfileBannerURL,
		Protected:        res.Legacy.Protected,
		Verified:         res.Legacy.Verified,
		Blue:             res.IsBlueVerified,
		BlueType:         res.VerifiedType,
		DescriptionLinks: descLinks,
		PinnedIDs:        pinned,
	}, nil
}

// parseTimeline walks the timeline instructions in response order and
// returns the tweets plus the bottom cursor for the next page. Entry order
// is preserved so the output stays most-recent-first as served.
func parseTimeline(resp *timelineResponse) ([]Tweet, string) {
	var entries []timelineEntry
	for _, instruction := range resp.Data.User.Result.TimelineV2.Timeline.Instructions {
		switch instruction.Type {
		case "TimelineAddEntries", "TimelineAddToModule":
			entries = append(entries, instruction.Entries...)
		case "TimelinePinEntry":
			if instruction.Entry != nil {
				entries = append(entries, *instruction.Entry)
			}
		}
	}

	var tweets []Tweet
	var cursor string
	for _, entry := range entries {
		switch entry.Content.EntryType {
		case "TimelineTimelineItem":
			item := entry.Content.ItemContent
			if item == nil || item.ItemType != "TimelineTweet" {
				continue
			}
			tweet, err := parseTweetResult(item.TweetResults.Result)
			if err != nil {
				// Malformed entries are skipped, not fatal for the page
				continue
			}
			tweets = append(tweets, *tweet)
		case "TimelineTimelineCursor":
			if entry.Content.CursorType == "Bottom" {
				cursor = entry.Content.Value
			}
		}
	}

	return tweets, cursor
}

// parseTweetResult flattens a GraphQL tweet result into a Tweet
func parseTweetResult(res *tweetResult) (*Tweet, error) {
	if res == nil {
		return nil, errors.New(errors.ErrorTypeParsing, "missing tweet result", 0)
	}

	// Limited-visibility tweets wrap the real tweet one level down
	if res.TypeName == "TweetWithVisibilityResults" && res.Tweet != nil {
		res = res.Tweet
	}

	if res.RestID == "" || res.Legacy == nil {
		return nil, errors.New(errors.ErrorTypeParsing, "tweet result missing rest_id or legacy", 0)
	}

	id, err := strconv.ParseInt(res.RestID, 10, 64)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing, "invalid tweet id: "+res.RestID, 0)
	}

	date, err := time.Parse(createdAtLayout, res.Legacy.CreatedAt)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing, "invalid tweet created_at: "+res.Legacy.CreatedAt, 0)
	}

	author, err := parseAuthorRef(res.Core.UserResults.Result)
	if err != nil {
		return nil, err
	}

	conversationID, _ := strconv.ParseInt(res.Legacy.ConversationIDStr, 10, 64)

	// Long posts carry their full text in note_tweet; full_text is truncated
	content := res.Legacy.FullText
	links := parseLinks(res.Legacy.Entities.URLs)
	if res.NoteTweet != nil && res.NoteTweet.NoteTweetResults.Result.Text != "" {
		content = res.NoteTweet.NoteTweetResults.Result.Text
		links = append(links, parseLinks(res.NoteTweet.NoteTweetResults.Result.EntitySet.URLs)...)
	}

	var hashtags []string
	for _, tag := range res.Legacy.Entities.Hashtags {
		if tag.Text != "" {
			hashtags = append(hashtags, tag.Text)
		}
	}
	var cashtags []string
	for _, tag := range res.Legacy.Entities.Symbols {
		if tag.Text != "" {
			cashtags = append(cashtags, tag.Text)
		}
	}

	var mentions []UserRef
	for _, m := range res.Legacy.Entities.UserMentions {
		if ref := mentionRef(m); ref != nil {
			mentions = append(mentions, *ref)
		}
	}

	var viewCount *int64
	if res.Views.Count != "" {
		if v, err := strconv.ParseInt(res.Views.Count, 10, 64); err == nil {
			viewCount = &v
		}
	}

	var replyUser *UserRef
	if res.Legacy.InReplyToUserID != nil {
		for _, m := range res.Legacy.Entities.UserMentions {
			if m.IDStr == *res.Legacy.InReplyToUserID {
				replyUser = mentionRef(m)
				break
			}
		}
	}

	lang := res.Legacy.Lang
	if lang == "" {
		lang = "und"
	}

	return &Tweet{
		ID:                  id,
		IDStr:               res.RestID,
		URL:                 StatusURL(author.Username, res.RestID),
		Date:                date,
		User:                *author,
		Lang:                lang,
		RawContent:          content,
		ConversationID:      conversationID,
		ConversationIDStr:   res.Legacy.ConversationIDStr,
		ReplyCount:          res.Legacy.ReplyCount,
		RetweetCount:        res.Legacy.RetweetCount,
		LikeCount:           res.Legacy.FavoriteCount,
		QuoteCount:          res.Legacy.QuoteCount,
		Hashtags:            hashtags,
		Cashtags:            cashtags,
		MentionedUsers:      mentions,
		Links:               links,
		ViewCount:           viewCount,
		InReplyToTweetIDStr: res.Legacy.InReplyToStatusID,
		InReplyToUser:       replyUser,
		SourceLabel:         sourceLabel(res.Source),
		PossiblySensitive:   res.Legacy.PossiblySensitive,
	}, nil
}

// parseAuthorRef extracts the tweet author as a UserRef
func parseAuthorRef(res *userResult) (*UserRef, error) {
	if res == nil || res.RestID == "" {
		return nil, errors.New(errors.ErrorTypeParsing, "tweet missing author", 0)
	}
	id, err := strconv.ParseInt(res.RestID, 10, 64)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeParsing, "invalid author id: "+res.RestID, 0)
	}
	return &UserRef{
		ID:          id,
		IDStr:       res.RestID,
		Username:    res.Legacy.ScreenName,
		DisplayName: res.Legacy.Name,
	}, nil
}

func mentionRef(m wireMention) *UserRef {
	if m.IDStr == "" || m.ScreenName == "" {
		return nil
	}
	id, err := strconv.ParseInt(m.IDStr, 10, 64)
	if err != nil {
		return nil
	}
	return &UserRef{
		ID:          id,
		IDStr:       m.IDStr,
		Username:    m.ScreenName,
		DisplayName: m.Name,
	}
}

// parseLinks converts wire URL entities to TextLinks, dropping entries
// without both a t.co URL and an expanded URL
func parseLinks(urls []wireURL) []TextLink {
	var links []TextLink
	for _, u := range urls {
		if u.ExpandedURL == "" || u.URL == "" {
			continue
		}
		link := TextLink{URL: u.ExpandedURL}
		tco := u.URL
		link.TcoURL = &tco
		if u.DisplayURL != "" {
			display := u.DisplayURL
			link.Text = &display
		}
		links = append(links, link)
	}
	return links
}

var sourceLabelRe = regexp.MustCompile(`>([^<]*)<`)

// sourceLabel extracts the client label from the source HTML anchor,
// e.g. "Twitter Web App"
func sourceLabel(sourceHTML string) *string {
	if sourceHTML == "" {
		return nil
	}
	match := sourceLabelRe.FindStringSubmatch(sourceHTML)
	if match == nil {
		return nil
	}
	label := match[1]
	return &label
}
