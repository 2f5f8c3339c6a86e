package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	"promptcrawler/internal/config"
	"promptcrawler/internal/core/crawlconfig"
	"promptcrawler/internal/core/dedup"
	"promptcrawler/internal/core/extract"
	"promptcrawler/internal/core/job"
	"promptcrawler/internal/core/persist"
	"promptcrawler/internal/core/source"
	"promptcrawler/internal/logger"
	"promptcrawler/internal/platform/eino"
	"promptcrawler/internal/platform/postgres"
	rds "promptcrawler/internal/platform/redis"
	"promptcrawler/internal/platform/supabase"
	tasks "promptcrawler/internal/platform/tasks"
	"promptcrawler/internal/server"
	"promptcrawler/internal/store"
	"promptcrawler/internal/worker"
)

func openStore(ctx context.Context, cfg config.Config, logr *logger.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case "postgres":
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, nil, err
		}
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case "memory":
		logr.LogWarn("using in-memory store, nothing survives a restart")
		return store.NewMemory(), func() {}, nil
	default:
		sb, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			return nil, nil, err
		}
		return sb, func() {}, nil
	}
}

func main() {
	cfg := config.Load()
	logr := logger.New("main")
	logr.LogInfof("starting promptcrawler at %s (env=%s, store=%s)", cfg.HTTPAddr, cfg.AppEnv, cfg.StoreDriver)

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.LogFatal("failed to open store", err)
	}
	defer closeStore()

	chatModel, err := eino.NewChatModel(ctx, eino.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.DefaultLLMModel,
	})
	if err != nil {
		logr.LogFatal("failed to initialize LLM", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	factory := source.NewFactory(
		source.ForumConfig{
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			UserAgent:    cfg.RedditUserAgent,
			AuthURL:      cfg.RedditAuthURL,
			APIBase:      cfg.RedditAPIBase,
			Delay:        cfg.SourceRequestDelay,
			HTTPClient:   httpClient,
		},
		source.RepoConfig{
			Token:      cfg.GitHubToken,
			APIBase:    cfg.GitHubAPIBase,
			Delay:      cfg.SourceRequestDelay,
			HTTPClient: httpClient,
		},
	)

	jobSvc := job.NewService(job.Deps{
		Jobs:          st,
		Config:        crawlconfig.NewLoader(st),
		Connectors:    factory,
		Dedup:         dedup.NewGate(st),
		Extractor:     extract.NewService(chatModel),
		Writer:        persist.NewWriter(st),
		SourceDelay:   cfg.SourceRequestDelay,
		AnalysisDelay: cfg.AnalysisDelay,
	})

	// Scheduled and queued crawls run through asynq when Redis is configured.
	var (
		redisSvc    *rds.Service
		asynqServer *asynq.Server
		scheduler   *tasks.Scheduler
		queue       job.Enqueuer
	)
	if cfg.RedisAddr != "" {
		redisSvc, err = rds.New(ctx, rds.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err != nil {
			logr.LogFatal("failed to connect to redis", err)
		}
		defer redisSvc.Close()

		taskClient := tasks.New(redisSvc)
		defer taskClient.Close()
		queue = taskClient

		asynqServer = asynq.NewServer(redisSvc.AsynqRedisOpt(), asynq.Config{
			// one crawl at a time
			Concurrency: 1,
			Queues:      map[string]int{"default": 1},
		})
		mux := worker.NewMux()
		mux.HandleFunc(tasks.TaskTypeCrawlRun, jobSvc.HandleRunTask)
		if err := asynqServer.Start(mux.Mux()); err != nil {
			logr.LogFatal("failed to start worker", err)
		}

		if cfg.SchedulingEnabled() {
			scheduler = tasks.NewScheduler(redisSvc)
			if _, err := scheduler.RegisterCrawl(cfg.CrawlSchedule); err != nil {
				logr.LogFatal("failed to register crawl schedule", err)
			}
			if err := scheduler.Start(); err != nil {
				logr.LogFatal("failed to start scheduler", err)
			}
		}
	}

	app := fiber.New(fiber.Config{
		AppName: "promptcrawler",
		// a crawl run answers only once it is finished
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		JSONEncoder: func(v interface{}) ([]byte, error) {
			var buf bytes.Buffer
			encoder := json.NewEncoder(&buf)
			encoder.SetEscapeHTML(false)
			if err := encoder.Encode(v); err != nil {
				return nil, err
			}
			return buf.Bytes(), nil
		},
	})

	healthHandler := server.RegisterRoutes(app, server.Dependencies{
		Job:   jobSvc,
		Store: st,
		Redis: redisSvc,
		Queue: queue,
	})
	healthHandler.SetReady()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdown
		logr.LogInfo("Shutting down...")
		if scheduler != nil {
			scheduler.Shutdown()
		}
		if asynqServer != nil {
			asynqServer.Shutdown()
		}
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		logr.LogFatal("server listen", err)
	}
}
