package twitter

import (
	"context"
	"time"

	"tweet-responder/internal/content"
)

// TimelineSource adapts a logged-in Client to a polling content source.
type TimelineSource struct {
	client *Client
	count  int
	now    func() time.Time
}

// NewTimelineSource reads count tweets per fetch from c's home timeline.
func NewTimelineSource(c *Client, count int) *TimelineSource {
	if count <= 0 {
		count = 20
	}
	return &TimelineSource{client: c, count: count, now: time.Now}
}

// FetchRecent maps the latest timeline page to content items stamped with
// the fetch time.
func (s *TimelineSource) FetchRecent(ctx context.Context) ([]content.Item, error) {
	tweets, err := s.client.FetchRecentTimeline(ctx, s.count)
	if err != nil {
		return nil, err
	}
	observed := s.now().UTC()
	items := make([]content.Item, 0, len(tweets))
	for _, tw := range tweets {
		items = append(items, content.Item{
			ID:          tw.ID,
			Text:        tw.Text,
			AuthorLabel: tw.AuthorName,
			Repost:      tw.IsRetweet,
			Reply:       tw.IsReply,
			ObservedAt:  observed,
		})
	}
	return items, nil
}
