package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tweet-responder/internal/analytics"
	"tweet-responder/internal/content"
	"tweet-responder/internal/controller"
	"tweet-responder/internal/storage"
)

type fakeRunner struct {
	got    []content.Item
	result controller.Summary
}

func (f *fakeRunner) RunCycle(_ context.Context, items []content.Item) controller.Summary {
	f.got = append(f.got, items...)
	return f.result
}
func (f *fakeRunner) SeenCount() int             { return len(f.got) }
func (f *fakeRunner) Totals() controller.Summary { return f.result }

type fakeLoader struct {
	outcomes []storage.Outcome
	err      error
}

func (f fakeLoader) LoadOutcomes(context.Context) ([]storage.Outcome, error) {
	return f.outcomes, f.err
}

var fixedNow = time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC)

func text(t *testing.T, res *mcp.CallToolResultFor[any], i int) string {
	t.Helper()
	require.Greater(t, len(res.Content), i)
	tc, ok := res.Content[i].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestReplyToTweet_RunsSingleItemCycle(t *testing.T) {
	r := &fakeRunner{result: controller.Summary{Succeeded: 1}}
	tools := &ResponderTools{runner: r, logger: zap.NewNop(), now: func() time.Time { return fixedNow }}

	res, err := tools.ReplyToTweet(context.Background(), nil, &mcp.CallToolParamsFor[ReplyParams]{
		Arguments: ReplyParams{TweetID: " 7 ", Text: "hello", Author: "ann", IsReply: true},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res, 0), "Replied to tweet 7")

	require.Len(t, r.got, 1)
	assert.Equal(t, "7", r.got[0].ID)
	assert.True(t, r.got[0].Reply)
	assert.Equal(t, fixedNow, r.got[0].ObservedAt)
}

func TestReplyToTweet_FailureIsToolError(t *testing.T) {
	r := &fakeRunner{result: controller.Summary{Failed: 1}}
	tools := &ResponderTools{runner: r, logger: zap.NewNop()}

	res, err := tools.ReplyToTweet(context.Background(), nil, &mcp.CallToolParamsFor[ReplyParams]{
		Arguments: ReplyParams{TweetID: "7", Text: "hello"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res, 1), `"failed":1`)
}

func TestReplyToTweet_MissingArguments(t *testing.T) {
	r := &fakeRunner{}
	tools := &ResponderTools{runner: r, logger: zap.NewNop()}

	res, err := tools.ReplyToTweet(context.Background(), nil, &mcp.CallToolParamsFor[ReplyParams]{
		Arguments: ReplyParams{TweetID: "7"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, r.got)
}

func TestStatus_IncludesTodayStats(t *testing.T) {
	r := &fakeRunner{got: []content.Item{{ID: "1"}}, result: controller.Summary{Succeeded: 1}}
	loader := fakeLoader{outcomes: []storage.Outcome{{Timestamp: fixedNow.Add(-time.Hour), ContentID: "1", Success: true}}}
	tools := &ResponderTools{runner: r, store: loader, logger: zap.NewNop(), now: func() time.Time { return fixedNow }}

	res, err := tools.Status(context.Background(), nil, &mcp.CallToolParamsFor[StatusParams]{})
	require.NoError(t, err)
	out := text(t, res, 0)
	assert.Contains(t, out, "Remembered tweets: 1")
	assert.Contains(t, out, "2024-12-21")
	assert.Contains(t, out, "Replies sent: 1")

	var stats analytics.DailyStats
	require.NoError(t, json.Unmarshal([]byte(text(t, res, 1)), &stats))
	assert.Equal(t, "2024-12-21", stats.Date)
	assert.Equal(t, 1, stats.Succeeded)
}

func TestStatus_StoreErrorIsToolError(t *testing.T) {
	tools := &ResponderTools{runner: &fakeRunner{}, store: fakeLoader{err: errors.New("disk gone")}, logger: zap.NewNop()}

	res, err := tools.Status(context.Background(), nil, &mcp.CallToolParamsFor[StatusParams]{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
