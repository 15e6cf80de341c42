package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tweet-responder/internal/config"
)

const (
	ProviderDeepSeek = "deepseek"
	ProviderOpenAI   = "openai"
	ProviderYandex   = "yandex"
	ProviderGemini   = "gemini"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	DeepSeekAPIKey   string
	DeepSeekBaseURL  string
	DeepSeekModel    string
	OpenaiAPIKey     string
	OpenaiBaseURL    string
	OpenaiModel      string
	YandexOAuthToken string
	YandexFolderID   string
	GeminiAPIKey     string
	GeminiModel      string
	MaxTokens        int
	HTTPClient       *http.Client
}

// NewFactory copies provider settings from cfg; http calls time out after
// CALL_TIMEOUT.
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		DeepSeekAPIKey:   cfg.DeepSeekAPIKey,
		DeepSeekBaseURL:  cfg.DeepSeekBaseURL,
		DeepSeekModel:    cfg.DeepSeekModel,
		OpenaiAPIKey:     cfg.OpenAIAPIKey,
		OpenaiBaseURL:    cfg.OpenAIBaseURL,
		OpenaiModel:      cfg.OpenAIModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
		GeminiAPIKey:     cfg.GeminiAPIKey,
		GeminiModel:      cfg.GeminiModel,
		MaxTokens:        cfg.MaxTokens,
		HTTPClient:       &http.Client{Timeout: cfg.CallTimeout},
	}
}

// CreateClient returns the client for provider.
func (f *Factory) CreateClient(ctx context.Context, provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderDeepSeek:
		return NewOpenAI(f.DeepSeekAPIKey, f.DeepSeekBaseURL, f.DeepSeekModel, f.MaxTokens, f.HTTPClient), nil
	case ProviderOpenAI:
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, f.OpenaiModel, f.MaxTokens, f.HTTPClient), nil
	case ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	case ProviderGemini:
		return NewGemini(ctx, f.GeminiAPIKey, f.GeminiModel, f.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
