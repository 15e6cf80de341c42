package twitter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineSource_MapsTweetsToItems(t *testing.T) {
	srv, _ := newFakeAPI(t)
	c := NewClient(srv.URL+"/api", Credentials{Username: "bot", Password: "pw", Email: "bot@example.com"}, srv.Client())
	require.NoError(t, c.Login(context.Background()))

	src := NewTimelineSource(c, 2)
	fixed := time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	items, err := src.FetchRecent(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "alice", items[0].AuthorLabel)
	assert.True(t, items[0].Eligible())
	assert.Equal(t, fixed, items[0].ObservedAt)
	assert.False(t, items[1].Eligible())
}

func TestTimelineSource_NotLoggedIn(t *testing.T) {
	src := NewTimelineSource(NewClient("http://127.0.0.1:0", Credentials{}, nil), 0)
	_, err := src.FetchRecent(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
