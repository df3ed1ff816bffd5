package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smilemakc/contentforge/internal/api"
	"github.com/smilemakc/contentforge/internal/cache"
	"github.com/smilemakc/contentforge/internal/config"
	"github.com/smilemakc/contentforge/internal/creditledger"
	"github.com/smilemakc/contentforge/internal/imageadapter"
	"github.com/smilemakc/contentforge/internal/llm"
	"github.com/smilemakc/contentforge/internal/phasea"
	"github.com/smilemakc/contentforge/internal/phaseb"
	"github.com/smilemakc/contentforge/internal/platform/logger"
	"github.com/smilemakc/contentforge/internal/prompt"
	"github.com/smilemakc/contentforge/internal/queue"
	"github.com/smilemakc/contentforge/internal/scheduler"
	"github.com/smilemakc/contentforge/internal/storage"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Config{Level: cfg.LogLevel})
	logger.SetDefault(log)
	log.Info("starting content pipeline server", "port", cfg.Server.Port)

	store := storage.NewStore(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)

	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.InitSchema(initCtx); err != nil {
		log.Error("failed to initialize database schema", err, "dsn", maskDSN(cfg.DB.DSN))
		os.Exit(1)
	}
	initCancel()
	log.Info("database schema initialized", "dsn", maskDSN(cfg.DB.DSN))

	jobRepo := storage.NewJobRepository(store)
	contentRepo := storage.NewContentRepository(store)

	var statusCache *cache.StatusCache
	if cfg.Redis.Enabled {
		sc, err := cache.NewStatusCache(cfg.Redis.Addr, 5*time.Second)
		if err != nil {
			log.Warn("redis status cache unavailable, continuing without it", "error", err.Error())
		} else {
			statusCache = sc
			log.Info("redis status cache connected", "addr", cfg.Redis.Addr)
		}
	}

	gateway := llm.NewOpenAIGateway(cfg.LLM.APIKey, cfg.LLM.ResearchModel, cfg.LLM.GenerationModel)

	var images imageadapter.Adapter = imageadapter.NoopAdapter{}
	if cfg.Image.Enabled {
		log.Warn("image lookups enabled but no concrete provider is wired, falling back to no-op", "provider", cfg.Image.Provider)
	}

	ledger := creditledger.NoopLedger{}

	rateLimiter := queue.NewTokenBucket(cfg.Queue.RateLimitMax, cfg.Queue.RateLimitWindow)

	phaseAExecutor := phasea.New(gateway, images, prompt.BuildResearchPrompt, "./debug-artifacts", cfg.Queue.PhaseARetries)
	phaseBExecutor := phaseb.New(gateway, rateLimiter, prompt.BuildGenerationPrompt, cfg.Queue.MaxConcurrentGeneration, cfg.Queue.PhaseBRetries)

	q := queue.New(queue.Config{
		Capacity:      1024,
		MaxRetries:    2,
		StallInterval: cfg.Queue.StallInterval,
		MaxStalls:     cfg.Queue.MaxStallCount,
	})

	var routingRules []phaseb.CompiledRule
	if cfg.Routing.Enabled {
		routingRules = phaseb.CompileRules(phaseb.DefaultRules())
		log.Info("category routing rules enabled", "rule_count", len(routingRules))
	}

	stallTimeout := cfg.Queue.StallInterval * time.Duration(cfg.Queue.MaxStallCount+1)
	sched := scheduler.New(jobRepo, contentRepo, q, phaseAExecutor, phaseBExecutor, ledger, statusCache, routingRules, stallTimeout)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go sched.Run(workerCtx)
	go sched.RunReaper(workerCtx, cfg.Queue.StallInterval)
	log.Info("scheduler worker and reaper started")

	admission := api.NewAdmission(jobRepo, contentRepo, q)
	handlers := api.NewHandlers(admission, statusCache)
	router := api.NewRouter(handlers)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	stopWorkers()
	q.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", err)
		os.Exit(1)
	}

	if err := store.Close(); err != nil {
		log.Error("failed to close database connection", err)
	}
	if statusCache != nil {
		if err := statusCache.Close(); err != nil {
			log.Error("failed to close status cache", err)
		}
	}

	log.Info("server exited gracefully")
}

// maskDSN masks the password segment of a DSN string for safe logging.
func maskDSN(dsn string) string {
	if len(dsn) == 0 {
		return ""
	}

	start, end := -1, -1
	for i := 0; i < len(dsn); i++ {
		if dsn[i] == ':' && start == -1 {
			if i+1 < len(dsn) && dsn[i+1] != '/' {
				start = i + 1
			}
		}
		if dsn[i] == '@' && start != -1 {
			end = i
			break
		}
	}

	if start != -1 && end != -1 && end > start {
		return dsn[:start] + "***" + dsn[end:]
	}
	return dsn
}
