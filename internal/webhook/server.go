package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"tweet-responder/internal/content"
	"tweet-responder/internal/controller"
)

// Runner runs one controller cycle over pushed items.
type Runner interface {
	RunCycle(ctx context.Context, items []content.Item) controller.Summary
}

// Server accepts pushed tweets and answers each with a one-shot cycle.
type Server struct {
	runner Runner
	path   string
	port   int
	logger *zap.Logger
	server *http.Server
	now    func() time.Time
}

// NewServer builds the server; path defaults to /webhook.
func NewServer(runner Runner, path string, port int, logger *zap.Logger) *Server {
	if path == "" {
		path = "/webhook"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{runner: runner, path: path, port: port, logger: logger, now: time.Now}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler serves the webhook path and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start blocks serving until Shutdown is called. It returns nil after a
// Shutdown, even one that ran before Start.
func (s *Server) Start() error {
	s.logger.Info("webhook server listening", zap.Int("port", s.port), zap.String("path", s.path))
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type payload struct {
	Tweet struct {
		ID          flexID `json:"id"`
		Text        string `json:"text"`
		PublishTime int64  `json:"publish_time"`
		IsRetweet   bool   `json:"is_retweet"`
		IsReply     bool   `json:"is_reply"`
	} `json:"tweet"`
	User struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"user"`
}

// flexID accepts ids sent either as JSON strings or numbers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("tweet id must be a string or number")
	}
	*f = flexID(n.String())
	return nil
}

type ack struct {
	Status    string              `json:"status"`
	Timestamp string              `json:"timestamp"`
	Summary   *controller.Summary `json:"summary,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	item, err := s.decode(w, r)
	if err != nil {
		s.logger.Warn("webhook payload rejected", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ack{Status: "error", Timestamp: s.stamp(), Error: err.Error()})
		return
	}

	s.logger.Info("webhook tweet received", zap.String("tweet_id", item.ID), zap.String("author", item.AuthorLabel))
	// a dropped client connection must not abort the cycle half way
	sum := s.runner.RunCycle(context.WithoutCancel(r.Context()), []content.Item{item})
	s.writeJSON(w, http.StatusOK, ack{Status: "success", Timestamp: s.stamp(), Summary: &sum})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (content.Item, error) {
	var p payload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&p); err != nil {
		return content.Item{}, fmt.Errorf("invalid json: %w", err)
	}
	id := strings.TrimSpace(string(p.Tweet.ID))
	if id == "" {
		return content.Item{}, errors.New("tweet.id is required")
	}
	if strings.TrimSpace(p.Tweet.Text) == "" {
		return content.Item{}, errors.New("tweet.text is required")
	}

	// ObservedAt is when the tweet reached us; publish_time is only logged
	observed := s.now().UTC()
	if p.Tweet.PublishTime > 0 {
		published := time.Unix(p.Tweet.PublishTime, 0).UTC()
		s.logger.Debug("webhook tweet age", zap.String("tweet_id", id), zap.Time("published_at", published), zap.Duration("age", observed.Sub(published)))
	}
	return content.Item{
		ID:          id,
		Text:        p.Tweet.Text,
		AuthorLabel: authorLabel(p.User.Name, p.User.Description),
		Repost:      p.Tweet.IsRetweet,
		Reply:       p.Tweet.IsReply,
		ObservedAt:  observed,
	}, nil
}

func authorLabel(name, description string) string {
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	switch {
	case name == "":
		return description
	case description == "":
		return name
	default:
		return name + " (" + description + ")"
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}
