package content

import (
	"strings"
	"time"
)

// Item is a candidate post the responder may answer. Items are created by a
// content source and never mutated afterwards.
type Item struct {
	ID          string
	Text        string
	AuthorLabel string
	Repost      bool
	Reply       bool
	ObservedAt  time.Time
}

// Eligible is false for reposts and replies; those are never answered.
// Manual retweets ("RT @user: ...") count as reposts even when the source
// did not flag them.
func (i Item) Eligible() bool {
	if i.Repost || i.Reply {
		return false
	}
	return !strings.HasPrefix(strings.TrimSpace(i.Text), "RT @")
}
