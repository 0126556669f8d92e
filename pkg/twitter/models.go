package twitter

import "time"

// TextLink is a resolved URL from a tweet or profile description
type TextLink struct {
	URL    string  `json:"url"`
	Text   *string `json:"text"`
	TcoURL *string `json:"tcourl"`
}

// UserRef is a lightweight reference to a user, used for mentions and
// reply targets
type UserRef struct {
	ID          int64  `json:"id"`
	IDStr       string `json:"id_str"`
	Username    string `json:"username"`
	DisplayName string `json:"displayname"`
}

// User is a full X user profile as captured in the metadata artifact
type User struct {
	ID             int64     `json:"id"`
	IDStr          string    `json:"id_str"`
	URL            string    `json:"url"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayname"`
	RawDescription string    `json:"rawDescription"`
	Created        time.Time `json:"created"`

	FollowersCount  int `json:"followersCount"`
	FriendsCount    int `json:"friendsCount"`
	StatusesCount   int `json:"statusesCount"`
	FavouritesCount int `json:"favouritesCount"`
	ListedCount     int `json:"listedCount"`
	MediaCount      int `json:"mediaCount"`

	Location         string  `json:"location"`
	ProfileImageURL  string  `json:"profileImageUrl"`
	ProfileBannerURL *string `json:"profileBannerUrl"`

	Protected *bool   `json:"protected"`
	Verified  *bool   `json:"verified"`
	Blue      *bool   `json:"blue"`
	BlueType  *string `json:"blueType"`

	DescriptionLinks []TextLink `json:"descriptionLinks"`
	PinnedIDs        []int64    `json:"pinnedIds"`
}

// Tweet is a single post from a user's timeline
type Tweet struct {
	ID                int64     `json:"id"`
	IDStr             string    `json:"id_str"`
	URL               string    `json:"url"`
	Date              time.Time `json:"date"`
	User              UserRef   `json:"user"`
	Lang              string    `json:"lang"`
	RawContent        string    `json:"rawContent"`
	ConversationID    int64     `json:"conversationId"`
	ConversationIDStr string    `json:"conversationIdStr"`

	ReplyCount   int `json:"replyCount"`
	RetweetCount int `json:"retweetCount"`
	LikeCount    int `json:"likeCount"`
	QuoteCount   int `json:"quoteCount"`

	Hashtags       []string   `json:"hashtags"`
	Cashtags       []string   `json:"cashtags"`
	MentionedUsers []UserRef  `json:"mentionedUsers"`
	Links          []TextLink `json:"links"`

	ViewCount           *int64   `json:"viewCount"`
	InReplyToTweetIDStr *string  `json:"inReplyToTweetIdStr"`
	InReplyToUser       *UserRef `json:"inReplyToUser"`

	SourceLabel       *string `json:"sourceLabel"`
	PossiblySensitive *bool   `json:"possiblySensitive"`
}
