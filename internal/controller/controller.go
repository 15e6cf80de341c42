package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tweet-responder/internal/content"
	"tweet-responder/internal/publisher"
	"tweet-responder/internal/storage"
)

const DefaultCallTimeout = 30 * time.Second

// Generator produces a reply for source text. An error or an empty string
// both mean no reply is available.
type Generator interface {
	Generate(ctx context.Context, sourceText string) (string, error)
}

// SeenSet remembers handled content ids. Mark performs any eviction and
// reports how many ids it dropped.
type SeenSet interface {
	Contains(id string) bool
	Mark(id string) int
	Len() int
}

// Source yields candidate items for a polling cycle.
type Source interface {
	FetchRecent(ctx context.Context) ([]content.Item, error)
}

// Summary counts what a cycle did with its items.
type Summary struct {
	SkippedDuplicate  int `json:"skipped_duplicate"`
	SkippedIneligible int `json:"skipped_ineligible"`
	Succeeded         int `json:"succeeded"`
	Failed            int `json:"failed"`
}

// Add returns the field-wise sum of s and o.
func (s Summary) Add(o Summary) Summary {
	return Summary{
		SkippedDuplicate:  s.SkippedDuplicate + o.SkippedDuplicate,
		SkippedIneligible: s.SkippedIneligible + o.SkippedIneligible,
		Succeeded:         s.Succeeded + o.Succeeded,
		Failed:            s.Failed + o.Failed,
	}
}

// Controller drives items through generate -> publish -> record and owns
// the seen set. Cycles are serialized: a cycle requested while another is
// running waits for it to finish.
type Controller struct {
	mu          sync.Mutex
	generator   Generator
	publisher   publisher.Publisher
	recorder    storage.Recorder
	seen        SeenSet
	callTimeout time.Duration
	logger      *zap.Logger
	now         func() time.Time

	totalsMu sync.Mutex
	totals   Summary
}

// Option configures a Controller.
type Option func(*Controller)

// WithCallTimeout bounds each generate, publish and record call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the time used for items without ObservedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns a controller owning seen. rec may be nil.
func New(gen Generator, pub publisher.Publisher, rec storage.Recorder, seen SeenSet, opts ...Option) *Controller {
	c := &Controller{
		generator:   gen,
		publisher:   pub,
		recorder:    rec,
		seen:        seen,
		callTimeout: DefaultCallTimeout,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RunCycle processes items in order. A failure on one item never aborts the
// cycle; cancellation of ctx stops it before the next item starts, leaving
// the remaining items unseen.
func (c *Controller) RunCycle(ctx context.Context, items []content.Item) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sum Summary
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			c.logger.Warn("cycle cancelled", zap.Int("remaining", len(items)-i), zap.Error(err))
			break
		}
		if c.seen.Contains(item.ID) {
			sum.SkippedDuplicate++
			continue
		}
		if !item.Eligible() {
			sum.SkippedIneligible++
			continue
		}
		if c.process(ctx, item) {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
	}

	c.totalsMu.Lock()
	c.totals = c.totals.Add(sum)
	c.totalsMu.Unlock()

	c.logger.Info("cycle finished",
		zap.Int("items", len(items)),
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped_duplicate", sum.SkippedDuplicate),
		zap.Int("skipped_ineligible", sum.SkippedIneligible),
		zap.Int("seen", c.seen.Len()))
	return sum
}

// Poll fetches a batch from src and runs one cycle over it.
func (c *Controller) Poll(ctx context.Context, src Source) (Summary, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	items, err := src.FetchRecent(fetchCtx)
	cancel()
	if err != nil {
		return Summary{}, fmt.Errorf("fetch candidates: %w", err)
	}
	return c.RunCycle(ctx, items), nil
}

// Totals returns the sum of all cycle summaries so far.
func (c *Controller) Totals() Summary {
	c.totalsMu.Lock()
	defer c.totalsMu.Unlock()
	return c.totals
}

// SeenCount returns the number of remembered ids.
func (c *Controller) SeenCount() int { return c.seen.Len() }

func (c *Controller) process(ctx context.Context, item content.Item) bool {
	log := c.logger.With(zap.String("tweet_id", item.ID))
	if item.AuthorLabel != "" {
		log = log.With(zap.String("author", item.AuthorLabel))
	}

	ts := item.ObservedAt
	if ts.IsZero() {
		ts = c.now()
	}
	outcome := storage.Outcome{Timestamp: ts, ContentID: item.ID, ContentText: item.Text}

	reply, err := c.generate(ctx, item.Text)
	switch {
	case err != nil:
		outcome.GeneratedReply = storage.GenerationFailedPrefix + err.Error()
		log.Warn("no reply generated", zap.Error(err))
	case reply == "":
		outcome.GeneratedReply = storage.GenerationFailedPrefix + "empty reply"
		log.Warn("no reply generated: empty text")
	default:
		if err := c.publish(ctx, reply, item.ID); err != nil {
			outcome.GeneratedReply = storage.PublishFailedPrefix + err.Error()
			var pe *publisher.PublishError
			if errors.As(err, &pe) {
				log.Warn("publish rejected", zap.Int("status", pe.StatusCode), zap.String("body", pe.Body), zap.String("reply", reply))
			} else {
				log.Warn("publish failed", zap.Error(err), zap.String("reply", reply))
			}
		} else {
			outcome.GeneratedReply = reply
			outcome.Success = true
			log.Info("reply sent", zap.String("reply", reply))
		}
	}

	c.record(ctx, outcome, log)

	// failures are marked too: a permanently rejected item is not retried
	if evicted := c.seen.Mark(item.ID); evicted > 0 {
		log.Info("seen set evicted oldest entries", zap.Int("evicted", evicted), zap.Int("seen", c.seen.Len()))
	}
	return outcome.Success
}

func (c *Controller) generate(ctx context.Context, text string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.generator.Generate(ctx, text)
}

func (c *Controller) publish(ctx context.Context, text, replyTo string) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()
	return c.publisher.Publish(ctx, text, replyTo)
}

func (c *Controller) record(ctx context.Context, o storage.Outcome, log *zap.Logger) {
	if c.recorder == nil {
		return
	}
	// the attempt already happened; persist it even if ctx is being cancelled
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
	defer cancel()
	if err := c.recorder.AppendOutcome(ctx, o); err != nil {
		log.Error("failed to record outcome", zap.Error(err), zap.Bool("success", o.Success))
	}
}
