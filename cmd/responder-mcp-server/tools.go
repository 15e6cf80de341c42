package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"tweet-responder/internal/analytics"
	"tweet-responder/internal/content"
	"tweet-responder/internal/controller"
	"tweet-responder/internal/storage"
)

// ReplyParams describes the tweet to answer.
type ReplyParams struct {
	TweetID   string `json:"tweet_id" mcp:"id of the tweet to reply to"`
	Text      string `json:"text" mcp:"text of the tweet"`
	Author    string `json:"author,omitempty" mcp:"optional author name, used for logging only"`
	IsRetweet bool   `json:"is_retweet,omitempty" mcp:"set when the tweet is a retweet; retweets are never answered"`
	IsReply   bool   `json:"is_reply,omitempty" mcp:"set when the tweet is itself a reply; replies are never answered"`
}

// StatusParams is empty; responder_status takes no arguments.
type StatusParams struct{}

type runner interface {
	RunCycle(ctx context.Context, items []content.Item) controller.Summary
	SeenCount() int
	Totals() controller.Summary
}

type outcomeLoader interface {
	LoadOutcomes(ctx context.Context) ([]storage.Outcome, error)
}

// ResponderTools exposes the reply cycle as MCP tools.
type ResponderTools struct {
	runner runner
	store  outcomeLoader
	logger *zap.Logger
	now    func() time.Time
}

func (t *ResponderTools) clock() time.Time {
	if t.now != nil {
		return t.now()
	}
	return time.Now()
}

// ReplyToTweet runs a one-item cycle for the given tweet.
func (t *ResponderTools) ReplyToTweet(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ReplyParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if strings.TrimSpace(args.TweetID) == "" || strings.TrimSpace(args.Text) == "" {
		return errorResult("tweet_id and text are required"), nil
	}

	item := content.Item{
		ID:          strings.TrimSpace(args.TweetID),
		Text:        args.Text,
		AuthorLabel: args.Author,
		Repost:      args.IsRetweet,
		Reply:       args.IsReply,
		ObservedAt:  t.clock(),
	}
	t.logger.Info("reply requested", zap.String("tweet_id", item.ID), zap.String("author", item.AuthorLabel))

	sum := t.runner.RunCycle(ctx, []content.Item{item})

	var msg string
	switch {
	case sum.Succeeded == 1:
		msg = fmt.Sprintf("✅ Replied to tweet %s", item.ID)
	case sum.Failed == 1:
		msg = fmt.Sprintf("❌ Reply to tweet %s failed; see the outcome log", item.ID)
	case sum.SkippedDuplicate == 1:
		msg = fmt.Sprintf("⏭️ Tweet %s was already handled", item.ID)
	case sum.SkippedIneligible == 1:
		msg = fmt.Sprintf("⏭️ Tweet %s is a retweet or reply and was skipped", item.ID)
	default:
		msg = fmt.Sprintf("Tweet %s was not processed", item.ID)
	}

	summary, _ := json.Marshal(sum)
	return &mcp.CallToolResultFor[any]{
		IsError: sum.Failed > 0,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
			&mcp.TextContent{Text: string(summary)},
		},
	}, nil
}

// Status reports the seen-set size, totals and today's statistics.
func (t *ResponderTools) Status(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[StatusParams]) (*mcp.CallToolResultFor[any], error) {
	totals := t.runner.Totals()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Remembered tweets: %d\n", t.runner.SeenCount())
	fmt.Fprintf(&sb, "Totals since start: %d sent, %d failed, %d duplicate, %d ineligible\n",
		totals.Succeeded, totals.Failed, totals.SkippedDuplicate, totals.SkippedIneligible)

	blocks := []mcp.Content{&mcp.TextContent{}}
	if t.store != nil {
		outcomes, err := t.store.LoadOutcomes(ctx)
		if err != nil {
			t.logger.Warn("failed to load outcomes", zap.Error(err))
			return errorResult(fmt.Sprintf("failed to load outcomes: %v", err)), nil
		}
		stats := analytics.AnalyzeDay(outcomes, t.clock().UTC())
		sb.WriteString("\n")
		sb.WriteString(stats.GenerateReportSummary())

		js, err := stats.ToJSON()
		if err != nil {
			return errorResult(fmt.Sprintf("failed to encode stats: %v", err)), nil
		}
		blocks = append(blocks, &mcp.TextContent{Text: js})
	}
	blocks[0] = &mcp.TextContent{Text: sb.String()}

	return &mcp.CallToolResultFor[any]{Content: blocks}, nil
}

func errorResult(msg string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: "❌ " + msg}},
	}
}
