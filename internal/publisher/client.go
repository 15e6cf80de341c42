package publisher

import (
	"context"
	"errors"

	"tweet-responder/internal/twitter"
)

// AuthenticatedClient publishes through a logged-in twitter session.
type AuthenticatedClient struct {
	client *twitter.Client
}

var _ Publisher = (*AuthenticatedClient)(nil)

// NewAuthenticatedClient logs the session in if needed. Login happens once
// here, never per item.
func NewAuthenticatedClient(ctx context.Context, c *twitter.Client) (*AuthenticatedClient, error) {
	if !c.LoggedIn() {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
	return &AuthenticatedClient{client: c}, nil
}

// Publish posts through the session; API errors become *PublishError.
func (p *AuthenticatedClient) Publish(ctx context.Context, text, replyTo string) error {
	_, err := p.client.Post(ctx, text, replyTo)
	var apiErr *twitter.APIError
	if errors.As(err, &apiErr) {
		return &PublishError{StatusCode: apiErr.StatusCode, Body: apiErr.Body}
	}
	return err
}
