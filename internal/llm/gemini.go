package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient talks to the Gemini API through google.golang.org/genai.
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// NewGemini creates a client authenticated with an API key.
func NewGemini(ctx context.Context, apiKey, model string, maxTokens int) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, maxTokens: int32(maxTokens)}, nil
}

// Generate sends one GenerateContent request capped at maxTokens output
// tokens.
func (c *GeminiClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	contents, config := geminiRequest(messages, c.maxTokens)
	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate content: %w", err)
	}
	return geminiResponse(result, c.model)
}

// geminiRequest folds system messages into SystemInstruction and maps the
// rest to user/model turns.
func geminiRequest(messages []Message, maxTokens int32) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{MaxOutputTokens: maxTokens}

	var system []string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case "system":
			system = append(system, m.Content)
		case "assistant":
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, config
}

func geminiResponse(result *genai.GenerateContentResponse, model string) (Response, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil ||
		len(result.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("gemini returned empty response")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p != nil {
			sb.WriteString(p.Text)
		}
	}
	out := Response{Content: sb.String(), Model: model}
	if u := result.UsageMetadata; u != nil {
		out.PromptTokens = int(u.PromptTokenCount)
		out.CompletionTokens = int(u.CandidatesTokenCount)
		out.TotalTokens = int(u.TotalTokenCount)
	}
	return out, nil
}
