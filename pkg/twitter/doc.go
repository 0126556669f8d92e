// Package twitter implements the X web GraphQL API surface the scraper
// needs: resolving a username to its profile and walking a user's timeline
// page by page.
//
// Requests authenticate with the session cookies (auth_token, ct0) plus the
// public web app bearer token. Responses arrive in the nested GraphQL shape
// and are flattened into the Tweet and User models written to the output
// artifacts. Timeline entries are processed in response order so the saved
// tweets keep the order the timeline serves them in.
package twitter
