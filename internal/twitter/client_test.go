package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeAPI(t *testing.T) (*httptest.Server, *[]postRequest) {
	t.Helper()
	var posts []postRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		var in loginRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Username != "bot" || in.Password != "pw" || in.Email != "bot@example.com" {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"sess-1"}`))
	})
	mux.HandleFunc("/api/tweets", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sess-1" {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		var in postRequest
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Text == "" {
			http.Error(w, `{"error":"empty text"}`, http.StatusBadRequest)
			return
		}
		posts = append(posts, in)
		_, _ = w.Write([]byte(`{"id":"999"}`))
	})
	mux.HandleFunc("/api/timeline", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("count") != "2" {
			http.Error(w, "bad count", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"tweets":[
			{"id":"1","text":"hello","author_name":"alice","created_at":"2024-12-21T10:00:00Z"},
			{"id":"2","text":"RT @x: y","is_retweet":true,"created_at":"2024-12-21T10:01:00Z"}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &posts
}

func TestClient_RequiresLogin(t *testing.T) {
	srv, _ := newFakeAPI(t)
	c := NewClient(srv.URL+"/api", Credentials{}, srv.Client())
	_, err := c.Post(context.Background(), "x", "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestClient_LoginPostAndTimeline(t *testing.T) {
	srv, posts := newFakeAPI(t)
	c := NewClient(srv.URL+"/api/", Credentials{Username: "bot", Password: "pw", Email: "bot@example.com"}, srv.Client())

	require.NoError(t, c.Login(context.Background()))
	assert.True(t, c.LoggedIn())

	id, err := c.Post(context.Background(), "hi there!", "1")
	require.NoError(t, err)
	assert.Equal(t, "999", id)
	require.Len(t, *posts, 1)
	assert.Equal(t, "1", (*posts)[0].ReplyToID)

	tweets, err := c.FetchRecentTimeline(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, tweets, 2)
	assert.Equal(t, "alice", tweets[0].AuthorName)
	assert.True(t, tweets[1].IsRetweet)
}

func TestClient_BadLogin(t *testing.T) {
	srv, _ := newFakeAPI(t)
	c := NewClient(srv.URL+"/api", Credentials{Username: "bot", Password: "wrong"}, srv.Client())
	err := c.Login(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, c.LoggedIn())
}

func TestClient_NonSuccessSurfacesBody(t *testing.T) {
	srv, _ := newFakeAPI(t)
	c := NewClient(srv.URL+"/api", Credentials{Username: "bot", Password: "pw", Email: "bot@example.com"}, srv.Client())
	require.NoError(t, c.Login(context.Background()))

	_, err := c.Post(context.Background(), "", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "empty text")
}
