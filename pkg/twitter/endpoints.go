package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	// GQLBaseURL is the base URL for the X web GraphQL API
	GQLBaseURL = "https://x.com/i/api/graphql"

	// OpUserByScreenName is the GraphQL operation for resolving a username
	// to a user ID and profile
	OpUserByScreenName = "32pL5BWe9WKeSK1MoPvFQQ/UserByScreenName"

	// OpUserTweets is the GraphQL operation for a user's timeline
	OpUserTweets = "iXH7ZKZLgatGaM6ZAWc-cw/UserTweets"

	// BearerToken is the public web app bearer token. It identifies the web
	// client, not the session; the session comes from the auth cookies.
	BearerToken = "Bearer AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA"

	// TweetsPerPage is the page size requested from UserTweets. Kept small
	// to avoid server-side timeouts on large timelines.
	TweetsPerPage = 10

	// MaxUsernameLength is the maximum length of an X username
	MaxUsernameLength = 15
)

// userFeatures are the feature flags required by UserByScreenName.
// Missing flags cause 400 responses, so the full set is sent every time.
var userFeatures = map[string]interface{}{
	"rweb_tipjar_consumption_enabled":                                   true,
	"responsive_web_graphql_exclude_directive_enabled":                  true,
	"verified_phone_label_enabled":                                      false,
	"creator_subscriptions_tweet_preview_api_enabled":                   true,
	"responsive_web_graphql_timeline_navigation_enabled":                true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled": false,
	"tweetypie_unmention_optimization_enabled":                          true,
	"highlights_tweets_tab_ui_enabled":                                  true,
	"hidden_profile_likes_enabled":                                      true,
	"hidden_profile_subscriptions_enabled":                              true,
	"subscriptions_verification_info_verified_since_enabled":            true,
	"subscriptions_verification_info_is_identity_verified_enabled":      false,
	"responsive_web_twitter_article_notes_tab_enabled":                  false,
	"subscriptions_feature_can_gift_premium":                            false,
	"profile_label_improvements_pcf_label_in_post_enabled":              true,
	"longform_notetweets_consumption_enabled":                           true,
	"longform_notetweets_rich_text_read_enabled":                        true,
	"view_counts_everywhere_api_enabled":                                true,
	"freedom_of_speech_not_reach_fetch_enabled":                         true,
	"articles_preview_enabled":                                          true,
	"rweb_video_timestamps_enabled":                                     true,
}

// tweetFeatures are the feature flags required by UserTweets
var tweetFeatures = map[string]interface{}{
	"rweb_video_screen_enabled":                                               false,
	"profile_label_improvements_pcf_label_in_post_enabled":                    true,
	"rweb_tipjar_consumption_enabled":                                         true,
	"responsive_web_graphql_exclude_directive_enabled":                        true,
	"verified_phone_label_enabled":                                            false,
	"creator_subscriptions_tweet_preview_api_enabled":                         true,
	"responsive_web_graphql_timeline_navigation_enabled":                      true,
	"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
	"premium_content_api_read_enabled":                                        false,
	"communities_web_enable_tweet_community_results_fetch":                    true,
	"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
	"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
	"responsive_web_grok_analyze_post_followups_enabled":                      false,
	"responsive_web_jetfuel_frame":                                            false,
	"responsive_web_grok_share_attachment_enabled":                            false,
	"articles_preview_enabled":                                                true,
	"responsive_web_edit_tweet_api_enabled":                                   true,
	"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
	"view_counts_everywhere_api_enabled":                                      true,
	"longform_notetweets_consumption_enabled":                                 true,
	"responsive_web_twitter_article_tweet_consumption_enabled":                true,
	"tweet_awards_web_tipping_enabled":                                        false,
	"responsive_web_grok_show_grok_translated_post":                           false,
	"responsive_web_grok_analysis_button_from_backend":                        false,
	"creator_subscriptions_quote_tweet_preview_enabled":                       false,
	"freedom_of_speech_not_reach_fetch_enabled":                               true,
	"standardized_nudges_misinfo":                                             true,
	"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
	"longform_notetweets_rich_text_read_enabled":                              true,
	"longform_notetweets_inline_media_enabled":                                true,
	"responsive_web_grok_image_annotation_enabled":                            false,
	"responsive_web_enhance_cards_enabled":                                    false,
	"tweetypie_unmention_optimization_enabled":                                true,
	"rweb_video_timestamps_enabled":                                           true,
}

// tweetFieldToggles are the field toggles sent with UserTweets
var tweetFieldToggles = map[string]interface{}{
	"withArticlePlainText": false,
}

// encodeParams builds a query string, JSON-encoding any map values the way
// the GraphQL endpoints expect
func encodeParams(params map[string]interface{}) (string, error) {
	values := url.Values{}
	for key, value := range params {
		switch v := value.(type) {
		case map[string]interface{}:
			encoded, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("failed to encode %s: %w", key, err)
			}
			values.Set(key, string(encoded))
		case string:
			values.Set(key, v)
		default:
			values.Set(key, fmt.Sprintf("%v", v))
		}
	}
	return values.Encode(), nil
}

// UserByScreenNameURL constructs the URL for resolving a username
func UserByScreenNameURL(baseURL, screenName string) (string, error) {
	query, err := encodeParams(map[string]interface{}{
		"variables": map[string]interface{}{
			"screen_name":              screenName,
			"withSafetyModeUserFields": true,
		},
		"features": userFeatures,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s?%s", baseURL, OpUserByScreenName, query), nil
}

// UserTweetsURL constructs the URL for one page of a user's timeline.
// An empty cursor requests the first page.
func UserTweetsURL(baseURL, userID, cursor string) (string, error) {
	variables := map[string]interface{}{
		"userId":                                 userID,
		"count":                                  TweetsPerPage,
		"includePromotedContent":                 true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}

	query, err := encodeParams(map[string]interface{}{
		"variables":    variables,
		"features":     tweetFeatures,
		"fieldToggles": tweetFieldToggles,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s?%s", baseURL, OpUserTweets, query), nil
}

// ProfileURL constructs the public profile URL for a username
func ProfileURL(username string) string {
	if username == "" {
		return ""
	}
	return fmt.Sprintf("https://x.com/%s", username)
}

// StatusURL constructs the public URL for a single tweet
func StatusURL(username, tweetID string) string {
	if username == "" || tweetID == "" {
		return ""
	}
	return fmt.Sprintf("https://x.com/%s/status/%s", username, tweetID)
}

// IsValidUsername checks if a username is valid according to X rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > MaxUsernameLength {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeUsername strips a leading @ and surrounding whitespace from
// user-supplied usernames
func SanitizeUsername(username string) string {
	start := 0
	end := len(username)
	for start < end && (username[start] == ' ' || username[start] == '\t') {
		start++
	}
	for end > start && (username[end-1] == ' ' || username[end-1] == '\t') {
		end--
	}
	username = username[start:end]

	if username != "" && username[0] == '@' {
		username = username[1:]
	}
	return username
}
