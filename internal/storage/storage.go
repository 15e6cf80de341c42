package storage

import (
	"context"
	"errors"
	"time"
)

// Outcome is one processing attempt. GeneratedReply holds the reply text on
// success and the failure description otherwise. Outcomes are append-only.
type Outcome struct {
	Timestamp      time.Time `json:"timestamp"`
	ContentID      string    `json:"content_id"`
	ContentText    string    `json:"content_text"`
	GeneratedReply string    `json:"generated_reply"`
	Success        bool      `json:"success"`
}

// Failure descriptions start with one of these prefixes.
const (
	GenerationFailedPrefix = "generation failed: "
	PublishFailedPrefix    = "publish failed: "
)

// Recorder appends outcomes. Implementations must be safe for concurrent use.
type Recorder interface {
	AppendOutcome(ctx context.Context, o Outcome) error
}

// Store is a Recorder that can also read its history back in chronological
// order.
type Store interface {
	Recorder
	LoadOutcomes(ctx context.Context) ([]Outcome, error)
	Close() error
}

// Fanout appends to every recorder and joins their errors.
type Fanout []Recorder

// AppendOutcome writes to every recorder, even after a failure, and joins
// the errors.
func (f Fanout) AppendOutcome(ctx context.Context, o Outcome) error {
	var errs []error
	for _, r := range f {
		if r == nil {
			continue
		}
		if err := r.AppendOutcome(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
