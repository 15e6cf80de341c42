package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweet-responder/internal/twitter"
)

func TestDirectHTTP_ReplyPayloadAndHeaders(t *testing.T) {
	var body map[string]any
	var hdr http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	p := NewDirectHTTP(srv.URL, "key-1", "auth-1", srv.Client())
	require.NoError(t, p.Publish(context.Background(), "hi there!", "1870409109964750937"))

	assert.Equal(t, "key-1", hdr.Get("apikey"))
	assert.Equal(t, "auth-1", hdr.Get("AuthToken"))
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))

	vars := body["variables"].(map[string]any)
	assert.Equal(t, "hi there!", vars["tweet_text"])
	assert.Equal(t, false, vars["dark_request"])
	assert.Equal(t, false, vars["includePromotedContent"])
	assert.Equal(t, []any{}, vars["semantic_annotation_ids"])
	reply := vars["reply"].(map[string]any)
	assert.Equal(t, "1870409109964750937", reply["in_reply_to_tweet_id"])
	assert.Equal(t, []any{}, reply["exclude_reply_user_ids"])
}

func TestDirectHTTP_NoReplyTarget(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
	}))
	defer srv.Close()

	p := NewDirectHTTP(srv.URL, "k", "a", srv.Client())
	require.NoError(t, p.Publish(context.Background(), "standalone", ""))
	_, hasReply := body["variables"].(map[string]any)["reply"]
	assert.False(t, hasReply)
}

func TestDirectHTTP_NonSuccessIsPublishError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("duplicate content"))
	}))
	defer srv.Close()

	err := NewDirectHTTP(srv.URL, "k", "a", srv.Client()).Publish(context.Background(), "x", "1")
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusForbidden, pe.StatusCode)
	assert.Equal(t, "duplicate content", pe.Body)
}

func TestDirectHTTP_TransportFault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewDirectHTTP(url, "k", "a", nil).Publish(context.Background(), "x", "1")
	require.Error(t, err)
	var pe *PublishError
	assert.False(t, errors.As(err, &pe))
}

func TestAuthenticatedClient_LogsInOnceAndMapsErrors(t *testing.T) {
	logins := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		logins++
		_, _ = w.Write([]byte(`{"token":"t"}`))
	})
	mux.HandleFunc("/tweets", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Text string `json:"text"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Text == "bad" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte("malformed"))
			return
		}
		_, _ = w.Write([]byte(`{"id":"2"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := twitter.NewClient(srv.URL, twitter.Credentials{Username: "u", Password: "p", Email: "e"}, srv.Client())
	p, err := NewAuthenticatedClient(context.Background(), c)
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), "good", "1"))
	err = p.Publish(context.Background(), "bad", "1")
	var pe *PublishError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnprocessableEntity, pe.StatusCode)
	assert.Equal(t, "malformed", pe.Body)
	assert.Equal(t, 1, logins)
}
