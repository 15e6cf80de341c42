package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultEndpoint = "https://api2.apidance.pro/graphql/CreateTweet"

// DirectHTTP posts through the apidance CreateTweet GraphQL endpoint.
type DirectHTTP struct {
	endpoint   string
	apiKey     string
	authToken  string
	httpClient *http.Client
}

var _ Publisher = (*DirectHTTP)(nil)

// NewDirectHTTP posts to the CreateTweet endpoint with the apikey and
// AuthToken headers.
func NewDirectHTTP(endpoint, apiKey, authToken string, httpClient *http.Client) *DirectHTTP {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &DirectHTTP{endpoint: endpoint, apiKey: apiKey, authToken: authToken, httpClient: httpClient}
}

type createTweetPayload struct {
	Variables createTweetVariables `json:"variables"`
}

type createTweetVariables struct {
	TweetText              string       `json:"tweet_text"`
	DarkRequest            bool         `json:"dark_request"`
	SemanticAnnotationIDs  []string     `json:"semantic_annotation_ids"`
	IncludePromotedContent bool         `json:"includePromotedContent"`
	Reply                  *replyTarget `json:"reply,omitempty"`
}

type replyTarget struct {
	InReplyToTweetID    string   `json:"in_reply_to_tweet_id"`
	ExcludeReplyUserIDs []string `json:"exclude_reply_user_ids"`
}

// Publish posts text, threaded under replyTo when it is set. A non-2xx
// response is returned as *PublishError.
func (p *DirectHTTP) Publish(ctx context.Context, text, replyTo string) error {
	payload := createTweetPayload{Variables: createTweetVariables{
		TweetText:             text,
		SemanticAnnotationIDs: []string{},
	}}
	if replyTo != "" {
		// empty exclusion list: no auto-populated mentions
		payload.Variables.Reply = &replyTarget{InReplyToTweetID: replyTo, ExcludeReplyUserIDs: []string{}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("AuthToken", p.authToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send tweet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &PublishError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
