package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"tweet-responder/internal/llm"
)

// MaxReplyRunes is the platform limit for a single post.
const MaxReplyRunes = 280

const DefaultPromptTemplate = `Please provide a friendly and engaging response to this tweet: "%s". 
Keep the response under 280 characters.`

var ErrEmptyReply = errors.New("provider returned no reply text")

// Generator turns source text into a short reply using an LLM provider.
type Generator struct {
	client         llm.Client
	promptTemplate string
	systemPrompt   string
	logger         *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithPromptTemplate overrides the user prompt; the template must contain
// exactly one %s where the source text is placed.
func WithPromptTemplate(tmpl string) Option {
	return func(g *Generator) {
		if strings.Count(tmpl, "%s") == 1 {
			g.promptTemplate = tmpl
		}
	}
}

// WithSystemPrompt prepends a system message to every request.
func WithSystemPrompt(p string) Option {
	return func(g *Generator) { g.systemPrompt = strings.TrimSpace(p) }
}

// New returns a generator using the built-in prompt unless overridden.
func New(client llm.Client, logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{client: client, promptTemplate: DefaultPromptTemplate, logger: logger}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate returns a reply for sourceText. Any provider failure is returned
// as an error; callers treat it as "no reply available".
func (g *Generator) Generate(ctx context.Context, sourceText string) (string, error) {
	var msgs []llm.Message
	if g.systemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: g.systemPrompt})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: strings.Replace(g.promptTemplate, "%s", sourceText, 1)})

	g.logger.Debug("requesting reply", zap.String("source_text", sourceText))
	resp, err := g.client.Generate(ctx, msgs)
	if err != nil {
		g.logger.Warn("generation failed", zap.Error(err))
		return "", fmt.Errorf("generate reply: %w", err)
	}

	reply := Clean(resp.Content)
	if reply == "" {
		g.logger.Warn("generation returned empty text", zap.String("model", resp.Model))
		return "", ErrEmptyReply
	}
	g.logger.Info("generated reply",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.PromptTokens),
		zap.Int("completion_tokens", resp.CompletionTokens),
		zap.String("reply", reply))
	return reply, nil
}

// Clean trims whitespace and wrapping quotes and cuts the text to
// MaxReplyRunes.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range [][2]string{{`"`, `"`}, {"“", "”"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
		}
	}
	if utf8.RuneCountInString(s) > MaxReplyRunes {
		r := []rune(s)
		s = strings.TrimSpace(string(r[:MaxReplyRunes]))
	}
	return s
}

// LoadPromptTemplate reads a template file, returning "" when it is absent
// or unreadable.
func LoadPromptTemplate(path string, logger *zap.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Info("prompt file not found, using built-in prompt", zap.String("path", path), zap.Error(err))
		return ""
	}
	return string(data)
}
