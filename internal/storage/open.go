package storage

import (
	"context"
	"fmt"

	"tweet-responder/internal/config"
)

// Open returns the store selected by RECORDER_BACKEND.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.RecorderBackend {
	case config.BackendCSV:
		return NewCSVRecorder(cfg.OutcomeLogPath)
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.BackendPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown recorder backend: %s", cfg.RecorderBackend)
	}
}
