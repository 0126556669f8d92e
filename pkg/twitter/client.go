package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"xscraper/pkg/config"
	"xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/retry"
)

// Client is an authenticated client for the X web GraphQL API. The session
// is carried by the auth_token and ct0 cookies; the bearer token only
// identifies the web app.
type Client struct {
	httpClient *http.Client
	authToken  string
	csrfToken  string
	userAgent  string
	baseURL    string
	limiter    ratelimit.Limiter
	retrier    *retry.Retrier
	logger     logger.Logger
}

// NewClient creates a new API client from the resolved configuration
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		authToken: cfg.Twitter.AuthToken,
		csrfToken: cfg.Twitter.CSRFToken,
		userAgent: cfg.Twitter.UserAgent,
		baseURL:   GQLBaseURL,
		limiter: ratelimit.NewSlidingWindow(
			cfg.RateLimit.RequestsPerMinute, time.Minute),
		retrier: retry.NewRetrier(&retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff: &retry.ExponentialBackoff{
				BaseDelay:    cfg.Retry.BaseDelay,
				MaxDelay:     cfg.Retry.MaxDelay,
				Multiplier:   cfg.Retry.Multiplier,
				JitterFactor: 0.1,
			},
			RetryIf: retry.DefaultRetryIf,
			Context: context.Background(),
			Logger:  log,
		}),
		logger: log,
	}
}

// SetBaseURL overrides the API base URL. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// setHeaders applies the browser-equivalent header set. The API rejects
// requests missing the csrf header or the auth-type marker.
func (c *Client) setHeaders(req *http.Request, targetUsername string) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", BearerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	req.Header.Set("X-Twitter-Active-User", "yes")
	req.Header.Set("X-Twitter-Client-Language", "en")
	req.Header.Set("X-Twitter-Auth-Type", "OAuth2Session")
	req.Header.Set("X-Csrf-Token", c.csrfToken)

	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	if targetUsername != "" {
		req.Header.Set("Referer", ProfileURL(targetUsername))
	}

	req.AddCookie(&http.Cookie{Name: "auth_token", Value: c.authToken})
	req.AddCookie(&http.Cookie{Name: "ct0", Value: c.csrfToken})
}

// doRequest performs a single HTTP request with the session headers set
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	start := time.Now()
	c.logger.DebugWithFields("sending API request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.Path,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("API request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.Path,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errors.New(errors.ErrorTypeNetwork,
			fmt.Sprintf("network error: %v", err), 0)
	}

	c.logger.DebugWithFields("API request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.Path,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetJSON performs an authenticated GET request and decodes the JSON
// response into target. Transient failures retry with backoff; auth, rate
// limit and not-found responses surface immediately.
func (c *Client) GetJSON(url string, targetUsername string, target interface{}) error {
	return c.retrier.Do(func() error {
		c.pace(targetUsername)

		req, err := http.NewRequest(http.MethodGet, url, nil)
		if err != nil {
			return errors.New(errors.ErrorTypeUnknown,
				fmt.Sprintf("failed to create request: %v", err), 0)
		}
		c.setHeaders(req, targetUsername)

		resp, err := c.doRequest(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if err := c.checkResponseStatus(resp); err != nil {
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errors.New(errors.ErrorTypeNetwork,
				fmt.Sprintf("failed to read response body: %v", err), resp.StatusCode)
		}

		if err := json.Unmarshal(body, target); err != nil {
			bodyPreview := string(body)
			if len(bodyPreview) > 200 {
				bodyPreview = bodyPreview[:200] + "..."
			}
			c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
				"url":          req.URL.Path,
				"status":       resp.StatusCode,
				"error":        err.Error(),
				"body_preview": bodyPreview,
			})
			return errors.New(errors.ErrorTypeParsing,
				fmt.Sprintf("failed to parse JSON: %v", err), resp.StatusCode)
		}

		return nil
	})
}

// pace blocks until the rate limiter admits the next request. A blocked
// request is logged with the time spent waiting. Allow consumes the slot
// when it succeeds, so Wait only runs on the blocked path.
func (c *Client) pace(targetUsername string) {
	if c.limiter.Allow() {
		return
	}
	start := time.Now()
	c.limiter.Wait()
	logger.LogRateLimit(targetUsername, time.Since(start).Seconds())
}

// checkResponseStatus maps HTTP status codes to typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("authentication error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.Path,
		})
		return errors.New(errors.ErrorTypeAuth, "session rejected", resp.StatusCode)
	case http.StatusNotFound:
		return errors.New(errors.ErrorTypeNotFound, "resource not found", resp.StatusCode)
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.Path,
		})
		return errors.New(errors.ErrorTypeRateLimit, "rate limit exceeded", resp.StatusCode)
	default:
		if resp.StatusCode >= 500 {
			c.logger.ErrorWithFields("server error", map[string]interface{}{
				"status": resp.StatusCode,
				"url":    resp.Request.URL.Path,
			})
			return errors.New(errors.ErrorTypeServerError, "server error", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return errors.New(errors.ErrorTypeUnknown,
				fmt.Sprintf("unexpected status code: %d", resp.StatusCode), resp.StatusCode)
		}
		return nil
	}
}
