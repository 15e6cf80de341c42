package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Credentials are the three values the session login needs.
type Credentials struct {
	Username string
	Password string
	Email    string
}

// Tweet is a timeline entry as returned by the session API.
type Tweet struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"author_name"`
	AuthorBio  string    `json:"author_description"`
	IsRetweet  bool      `json:"is_retweet"`
	IsReply    bool      `json:"is_reply"`
	CreatedAt  time.Time `json:"created_at"`
}

// APIError carries a non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twitter api error: status %d: %s", e.StatusCode, e.Body)
}

var ErrNotLoggedIn = errors.New("twitter client: not logged in")

// Client is a stateful session client: Login once, then Post and
// FetchRecentTimeline reuse the session token.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient returns a client that is not logged in yet.
func NewClient(baseURL string, creds Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		creds:      creds,
		httpClient: httpClient,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges the credentials for a session token.
func (c *Client) Login(ctx context.Context) error {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", loginRequest(c.creds), &out); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if out.Token == "" {
		return fmt.Errorf("login: empty session token")
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

// LoggedIn reports whether Login has succeeded.
func (c *Client) LoggedIn() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

type postRequest struct {
	Text      string `json:"text"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

type postResponse struct {
	ID string `json:"id"`
}

// Post creates a tweet, threaded under replyToID when it is non-empty.
// It returns the new tweet id.
func (c *Client) Post(ctx context.Context, text, replyToID string) (string, error) {
	token, err := c.session()
	if err != nil {
		return "", err
	}
	var out postResponse
	if err := c.do(ctx, http.MethodPost, "/tweets", token, postRequest{Text: text, ReplyToID: replyToID}, &out); err != nil {
		return "", fmt.Errorf("post tweet: %w", err)
	}
	return out.ID, nil
}

type timelineResponse struct {
	Tweets []Tweet `json:"tweets"`
}

// FetchRecentTimeline returns up to count tweets from the home timeline.
func (c *Client) FetchRecentTimeline(ctx context.Context, count int) ([]Tweet, error) {
	token, err := c.session()
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	var out timelineResponse
	if err := c.do(ctx, http.MethodGet, "/timeline?"+q.Encode(), token, nil, &out); err != nil {
		return nil, fmt.Errorf("fetch timeline: %w", err)
	}
	return out.Tweets, nil
}

func (c *Client) session() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return "", ErrNotLoggedIn
	}
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
