package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"legalai-assistant/internal/ai"
	"legalai-assistant/internal/cache"
	"legalai-assistant/internal/config"
	"legalai-assistant/internal/extract"
	redisClient "legalai-assistant/internal/platform/redis"
	"legalai-assistant/internal/store"
)

type App struct {
	Config    *config.Config
	Redis     *redis.Client // nil when Redis is unavailable
	Sessions  *store.SessionStore
	Documents *store.DocumentStore
	History   *cache.HistoryCache // nil when Redis is unavailable
	Extractor *extract.Extractor
	LLMClient *ai.OllamaClient
	Sweeper   *store.Sweeper

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	documents, err := store.NewDocumentStore(
		cfg.Upload.Dir,
		cfg.Upload.MaxFileSizeBytes,
		cfg.Upload.AllowedExtensions,
	)
	if err != nil {
		return nil, err
	}

	sessions := store.NewSessionStore(documents, cfg.SessionTTL())

	// The history cache is a convenience, not a dependency: run without
	// it when Redis is down.
	var redisCli *redis.Client
	var history *cache.HistoryCache
	redisCli, err = redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("redis unavailable, chat history caching disabled: %v", err)
		redisCli = nil
	} else {
		history = cache.NewHistoryCache(redisCli, cfg.SessionTTL())
	}

	sweeper := store.NewSweeper(sessions, cfg.SweepInterval(), func(evicted []string) {
		if history == nil {
			return
		}
		for _, id := range evicted {
			if err := history.DeleteHistory(context.Background(), id); err != nil {
				log.Printf("clear history for evicted session %s failed: %v", id, err)
			}
		}
	})
	sweeper.Start(ctx)

	return &App{
		Config:    cfg,
		Redis:     redisCli,
		Sessions:  sessions,
		Documents: documents,
		History:   history,
		Extractor: extract.New(cfg.OCR.TesseractCmd),
		LLMClient: ai.NewOllamaClient(cfg.OllamaTimeout(), cfg.OllamaCheckTimeout()),
		Sweeper:   sweeper,
		StartedAt: time.Now(),
	}, nil
}

func (a *App) GenerateConfig() ai.GenerateConfig {
	return ai.GenerateConfig{
		BaseURL: a.Config.Ollama.BaseURL,
		Model:   a.Config.Ollama.Model,
	}
}

func (a *App) GenerateOptions() ai.GenerateOptions {
	return ai.GenerateOptions{
		Temperature: a.Config.Ollama.Temperature,
		TopP:        a.Config.Ollama.TopP,
		TopK:        a.Config.Ollama.TopK,
		NumPredict:  a.Config.Ollama.NumPredict,
		Stop:        a.Config.Ollama.Stop,
	}
}

func (a *App) Close() error {
	var closeErr error
	if a.Sweeper != nil {
		a.Sweeper.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	return closeErr
}
