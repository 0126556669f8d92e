package twitter

import (
	"xscraper/pkg/errors"
)

// FetchUserByScreenName resolves a username to its full profile. A username
// the API reports as nonexistent returns a typed not-found error.
func (c *Client) FetchUserByScreenName(screenName string) (*User, error) {
	url, err := UserByScreenNameURL(c.baseURL, screenName)
	if err != nil {
		return nil, errors.New(errors.ErrorTypeUnknown, err.Error(), 0)
	}

	c.logger.DebugWithFields("looking up user", map[string]interface{}{
		"username": screenName,
	})

	var resp userResponse
	if err := c.GetJSON(url, screenName, &resp); err != nil {
		return nil, err
	}

	if hasUserNotFoundError(resp.Errors) {
		return nil, errors.New(errors.ErrorTypeNotFound,
			"user not found: "+screenName, 0)
	}
	if len(resp.Errors) > 0 {
		c.logger.WarnWithFields("GraphQL errors in user response", map[string]interface{}{
			"username": screenName,
			"message":  resp.Errors[0].Message,
		})
	}
	if resp.Data.User.Result == nil {
		return nil, errors.New(errors.ErrorTypeNotFound,
			"user not found: "+screenName, 0)
	}

	user, err := parseUserResult(resp.Data.User.Result)
	if err != nil {
		return nil, err
	}

	c.logger.InfoWithFields("resolved user", map[string]interface{}{
		"username": user.Username,
		"user_id":  user.IDStr,
	})

	return user, nil
}

// FetchUserTweets fetches a user's timeline, following the bottom cursor
// until the limit is reached or the timeline runs out. A limit of -1 means
// no limit. Tweets are returned in the order the timeline serves them.
func (c *Client) FetchUserTweets(userID string, screenName string, limit int) ([]Tweet, error) {
	var all []Tweet
	cursor := ""

	c.logger.DebugWithFields("fetching timeline", map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	})

	for {
		url, err := UserTweetsURL(c.baseURL, userID, cursor)
		if err != nil {
			return nil, errors.New(errors.ErrorTypeUnknown, err.Error(), 0)
		}

		var resp timelineResponse
		if err := c.GetJSON(url, screenName, &resp); err != nil {
			return nil, err
		}

		if len(resp.Errors) > 0 {
			c.logger.WarnWithFields("GraphQL errors in timeline response", map[string]interface{}{
				"user_id": userID,
				"message": resp.Errors[0].Message,
			})
		}

		pageTweets, nextCursor := parseTimeline(&resp)
		for _, tweet := range pageTweets {
			if limit != -1 && len(all) >= limit {
				break
			}
			all = append(all, tweet)
		}

		c.logger.DebugWithFields("timeline page parsed", map[string]interface{}{
			"user_id":    userID,
			"page_count": len(pageTweets),
			"collected":  len(all),
		})

		if nextCursor == "" || len(pageTweets) == 0 {
			break
		}
		if limit != -1 && len(all) >= limit {
			break
		}
		cursor = nextCursor
	}

	c.logger.InfoWithFields("timeline fetched", map[string]interface{}{
		"user_id":     userID,
		"tweet_count": len(all),
	})
	return all, nil
}
