package publisher

import (
	"context"
	"fmt"
)

// Publisher posts text, threaded under replyTo when it is non-empty.
type Publisher interface {
	Publish(ctx context.Context, text, replyTo string) error
}

// PublishError is returned when the provider answers with a non-success
// status. Network failures are returned unwrapped.
type PublishError struct {
	StatusCode int
	Body       string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish rejected: status %d: %s", e.StatusCode, e.Body)
}
