package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// LLMProvider selects the text-generation backend.
type LLMProvider string

const (
	ProviderDeepSeek LLMProvider = "deepseek"
	ProviderOpenAI   LLMProvider = "openai"
	ProviderYandex   LLMProvider = "yandex"
	ProviderGemini   LLMProvider = "gemini"
)

// PublisherTransport selects how replies are posted.
type PublisherTransport string

const (
	TransportDirect PublisherTransport = "direct"
	TransportClient PublisherTransport = "client"
)

// RecorderBackend selects where outcomes are stored.
type RecorderBackend string

const (
	BackendCSV      RecorderBackend = "csv"
	BackendSQLite   RecorderBackend = "sqlite"
	BackendPostgres RecorderBackend = "postgres"
)

// Mode selects which credentials Validate insists on.
type Mode string

const (
	ModeOnce    Mode = "once"
	ModePoll    Mode = "poll"
	ModeWebhook Mode = "webhook"
	// ModeMCP receives tweets as tool calls; no target or port is needed.
	ModeMCP Mode = "mcp"
)

// Config is the process configuration, read from the environment.
type Config struct {
	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"deepseek"`
	DeepSeekAPIKey   string      `env:"DEEPSEEK_API_KEY"`
	DeepSeekBaseURL  string      `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com/v1"`
	DeepSeekModel    string      `env:"DEEPSEEK_MODEL" envDefault:"deepseek-chat"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
	GeminiAPIKey     string      `env:"GEMINI_API_KEY"`
	GeminiModel      string      `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash-lite"`
	MaxTokens        int         `env:"MAX_TOKENS" envDefault:"150"`

	// Prompts
	PromptTemplatePath string `env:"PROMPT_TEMPLATE_PATH" envDefault:"prompts/reply_prompt.txt"`
	SystemPromptPath   string `env:"SYSTEM_PROMPT_PATH"`

	// Publishing
	PublisherTransport PublisherTransport `env:"PUBLISHER_TRANSPORT" envDefault:"direct"`
	ApidanceAPIKey     string             `env:"APIDANCE_API_KEY"`
	TwitterAuthToken   string             `env:"TWITTER_AUTH_TOKEN"`
	ApidanceEndpoint   string             `env:"APIDANCE_ENDPOINT" envDefault:"https://api2.apidance.pro/graphql/CreateTweet"`

	// Authenticated client (login + timeline)
	TwitterUsername      string `env:"TWITTER_USERNAME"`
	TwitterPassword      string `env:"TWITTER_PASSWORD"`
	TwitterEmail         string `env:"TWITTER_EMAIL"`
	TwitterClientBaseURL string `env:"TWITTER_CLIENT_BASE_URL" envDefault:"http://localhost:3000/api"`
	TimelineCount        int    `env:"TIMELINE_COUNT" envDefault:"20"`

	// Webhook
	Port        int    `env:"PORT" envDefault:"5000"`
	WebhookPath string `env:"WEBHOOK_PATH" envDefault:"/webhook"`

	// Cycle control
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"5m"`
	CallTimeout  time.Duration `env:"CALL_TIMEOUT" envDefault:"30s"`
	SeenCapacity int           `env:"SEEN_CAPACITY" envDefault:"1000"`

	// Storage
	RecorderBackend RecorderBackend `env:"RECORDER_BACKEND" envDefault:"csv"`
	OutcomeLogPath  string          `env:"OUTCOME_LOG_PATH" envDefault:"data/replies.csv"`
	SQLitePath      string          `env:"SQLITE_PATH" envDefault:"data/replies.db"`
	DatabaseURL     string          `env:"DATABASE_URL"`

	// Operator notifications (optional)
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
	DailyReportSpec  string `env:"DAILY_REPORT_SPEC" envDefault:"0 21 * * *"`

	// One-shot target
	TargetTweetID   string `env:"TARGET_TWEET_ID"`
	TargetTweetText string `env:"TARGET_TWEET_TEXT"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// MissingError lists required keys that were absent or invalid.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Keys, ", ")
}

// Load parses the environment. It does not validate; see Validate.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// TelegramEnabled reports whether operator notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// Validate checks that every credential the given mode needs is present.
func (c *Config) Validate(mode Mode) error {
	var missing []string
	need := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}

	switch c.LLMProvider {
	case ProviderDeepSeek:
		need("DEEPSEEK_API_KEY", c.DeepSeekAPIKey)
	case ProviderOpenAI:
		need("OPENAI_API_KEY", c.OpenAIAPIKey)
	case ProviderYandex:
		need("YANDEX_OAUTH_TOKEN", c.YandexOAuthToken)
		need("YANDEX_FOLDER_ID", c.YandexFolderID)
	case ProviderGemini:
		need("GEMINI_API_KEY", c.GeminiAPIKey)
	default:
		missing = append(missing, fmt.Sprintf("LLM_PROVIDER (unknown %q)", c.LLMProvider))
	}

	needClient := mode == ModePoll
	switch c.PublisherTransport {
	case TransportDirect:
		need("APIDANCE_API_KEY", c.ApidanceAPIKey)
		need("TWITTER_AUTH_TOKEN", c.TwitterAuthToken)
	case TransportClient:
		needClient = true
	default:
		missing = append(missing, fmt.Sprintf("PUBLISHER_TRANSPORT (unknown %q)", c.PublisherTransport))
	}
	if needClient {
		need("TWITTER_USERNAME", c.TwitterUsername)
		need("TWITTER_PASSWORD", c.TwitterPassword)
		need("TWITTER_EMAIL", c.TwitterEmail)
	}

	switch c.RecorderBackend {
	case BackendCSV:
		need("OUTCOME_LOG_PATH", c.OutcomeLogPath)
	case BackendSQLite:
		need("SQLITE_PATH", c.SQLitePath)
	case BackendPostgres:
		need("DATABASE_URL", c.DatabaseURL)
	default:
		missing = append(missing, fmt.Sprintf("RECORDER_BACKEND (unknown %q)", c.RecorderBackend))
	}

	if mode == ModeOnce {
		need("TARGET_TWEET_ID", c.TargetTweetID)
		need("TARGET_TWEET_TEXT", c.TargetTweetText)
	}
	if mode == ModePoll && c.PollInterval < time.Second {
		missing = append(missing, "POLL_INTERVAL (must be at least 1s)")
	}
	if mode == ModeWebhook && (c.Port <= 0 || c.Port > 65535) {
		missing = append(missing, fmt.Sprintf("PORT (invalid %d)", c.Port))
	}

	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}
