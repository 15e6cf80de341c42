package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"

	"tweet-responder/internal/analytics"
	"tweet-responder/internal/config"
	"tweet-responder/internal/controller"
	"tweet-responder/internal/generator"
	"tweet-responder/internal/llm"
	"tweet-responder/internal/logging"
	"tweet-responder/internal/publisher"
	"tweet-responder/internal/scheduler"
	"tweet-responder/internal/seen"
	"tweet-responder/internal/storage"
	"tweet-responder/internal/telegram"
	"tweet-responder/internal/twitter"
)

// App holds everything one process needs to run cycles.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      storage.Store
	Controller *controller.Controller

	notifier *telegram.Notifier
	session  *twitter.Client
}

// LoadConfig parses the environment, applies overrides and validates the
// result for every mode the process will run.
func LoadConfig(modes []config.Mode, override func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}
	for _, m := range modes {
		if err := cfg.Validate(m); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// New loads configuration for modes and wires the generator, publisher,
// recorder and controller. A *config.MissingError means a required
// credential is absent and the process must not start.
func New(ctx context.Context, modes []config.Mode, override func(*config.Config)) (*App, error) {
	cfg, err := LoadConfig(modes, override)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}
	if err := a.wire(ctx, slices.Contains(modes, config.ModePoll)); err != nil {
		logger.Error("startup failed", zap.Error(err))
		a.Close()
		return nil, err
	}
	a.Logger.Info("responder ready",
		zap.Any("modes", modes),
		zap.String("llm_provider", string(cfg.LLMProvider)),
		zap.String("transport", string(cfg.PublisherTransport)),
		zap.String("recorder", string(cfg.RecorderBackend)),
		zap.Bool("telegram", a.notifier != nil))
	return a, nil
}

func (a *App) wire(ctx context.Context, polling bool) error {
	cfg := a.Config

	llmClient, err := llm.NewFactory(cfg).CreateClient(ctx, string(cfg.LLMProvider))
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	gen := generator.New(llmClient, a.Logger.Named("generator"),
		generator.WithPromptTemplate(generator.LoadPromptTemplate(cfg.PromptTemplatePath, a.Logger)),
		generator.WithSystemPrompt(readSystemPrompt(cfg.SystemPromptPath, a.Logger)),
	)

	httpClient := &http.Client{Timeout: cfg.CallTimeout}
	if polling || cfg.PublisherTransport == config.TransportClient {
		a.session = twitter.NewClient(cfg.TwitterClientBaseURL, twitter.Credentials{
			Username: cfg.TwitterUsername,
			Password: cfg.TwitterPassword,
			Email:    cfg.TwitterEmail,
		}, httpClient)
		loginCtx, cancel := context.WithTimeout(ctx, cfg.CallTimeout)
		err := a.session.Login(loginCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("twitter login: %w", err)
		}
		a.Logger.Info("twitter session established", zap.String("username", cfg.TwitterUsername))
	}

	var pub publisher.Publisher
	switch cfg.PublisherTransport {
	case config.TransportClient:
		ac, err := publisher.NewAuthenticatedClient(ctx, a.session)
		if err != nil {
			return err
		}
		pub = ac
	default:
		pub = publisher.NewDirectHTTP(cfg.ApidanceEndpoint, cfg.ApidanceAPIKey, cfg.TwitterAuthToken, httpClient)
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open outcome store: %w", err)
	}
	a.Store = store

	var rec storage.Recorder = store
	if cfg.TelegramEnabled() {
		n, err := telegram.NewNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.CallTimeout, a.Logger.Named("telegram"))
		if err != nil {
			a.Logger.Warn("telegram notifier disabled", zap.Error(err))
		} else {
			a.notifier = n
			rec = storage.Fanout{store, n}
		}
	}

	a.Controller = controller.New(gen, pub, rec, seen.New(cfg.SeenCapacity),
		controller.WithCallTimeout(cfg.CallTimeout),
		controller.WithLogger(a.Logger.Named("controller")),
	)
	return nil
}

// NewScheduler returns a scheduler polling the timeline when poll is set
// and sending the daily report when the notifier is configured.
func (a *App) NewScheduler(poll bool) *scheduler.Scheduler {
	s := scheduler.New(a.Config.PollInterval, a.Logger.Named("scheduler"))
	if poll {
		src := twitter.NewTimelineSource(a.session, a.Config.TimelineCount)
		s.SetCycleFunction(func(ctx context.Context) error {
			sum, err := a.Controller.Poll(ctx, src)
			if err != nil {
				return err
			}
			a.LogSummary("polling cycle finished", sum)
			return nil
		})
	}
	if a.notifier != nil {
		s.SetReportFunction(a.Config.DailyReportSpec, a.SendDailyReport)
	}
	return s
}

// SendDailyReport sends today's outcome statistics to the operator chat.
func (a *App) SendDailyReport(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.Config.CallTimeout)
	defer cancel()
	outcomes, err := a.Store.LoadOutcomes(ctx)
	if err != nil {
		return fmt.Errorf("load outcomes: %w", err)
	}
	stats := analytics.AnalyzeDay(outcomes, time.Now().UTC())
	return a.notifier.SendText(ctx, stats.GenerateReportSummary())
}

// LogSummary logs a cycle summary with the current seen-set size.
func (a *App) LogSummary(msg string, sum controller.Summary) {
	a.Logger.Info(msg,
		zap.Int("succeeded", sum.Succeeded),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped_duplicate", sum.SkippedDuplicate),
		zap.Int("skipped_ineligible", sum.SkippedIneligible),
		zap.Int("seen", a.Controller.SeenCount()))
}

// Close releases the store and flushes the logger.
func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn("failed to close outcome store", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

func readSystemPrompt(path string, logger *zap.Logger) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("system prompt file not found or unreadable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return string(data)
}
