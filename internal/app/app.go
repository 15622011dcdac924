package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/jaayvee/internal/config"
	"github.com/MrSnakeDoc/jaayvee/internal/events"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver"
	"github.com/MrSnakeDoc/jaayvee/internal/httpserver/deps"
	"github.com/MrSnakeDoc/jaayvee/internal/index"
	"github.com/MrSnakeDoc/jaayvee/internal/logger"
	"github.com/MrSnakeDoc/jaayvee/internal/redis"
	"github.com/MrSnakeDoc/jaayvee/internal/referral"
	"github.com/MrSnakeDoc/jaayvee/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/jaayvee/internal/store/redis"
	"github.com/MrSnakeDoc/jaayvee/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	memIndex    *index.MemoryIndex
	reloader    *scheduler.VenturesReloader
	watcher     *scheduler.CatalogueWatcher
	gc          *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	memIndex := index.NewMemoryIndex()

	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		sessions    referral.SessionProvider
		sessionMode string
	)

	if cfg.RedisEnabled() {
		// Redis configured => fail fast if unavailable
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")

		redisClient = client
		store = redisstore.NewStore(client)
		sessions = redisstore.NewSessionProvider(store, cfg.SessionTTL)
		sessionMode = "redis"

		// Warm the index with ventures soft-disabled by a previous run.
		syncer := scheduler.NewRedisSyncer(store, memIndex, loggerClient)
		if err := syncer.Sync(context.Background()); err != nil {
			loggerClient.Warn("failed to sync from redis on startup, will load from catalogue",
				logger.Error(err))
		}
	} else {
		loggerClient.Warn("JAAYVEE_REDIS_ADDR not set, attribution sessions kept in memory")
		sessions = referral.NewMemorySessions()
		sessionMode = "memory"
	}

	eventsClient, err := events.NewClient(cfg.EventsAPIBase, cfg.EventsEndpoint, cfg.EventsTimeout, loggerClient)
	if err != nil {
		loggerClient.Errorf("Invalid events proxy configuration: %v", err)
		os.Exit(1)
	}

	reloadTrigger := make(chan struct{}, 1)

	reloader := scheduler.NewVenturesReloader(
		cfg.VenturesFile,
		store,
		memIndex,
		loggerClient,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	var watcher *scheduler.CatalogueWatcher
	if cfg.WatchVentures {
		watcher, err = scheduler.NewCatalogueWatcher(cfg.VenturesFile, reloadTrigger, loggerClient)
		if err != nil {
			loggerClient.Warn("ventures file watch disabled, periodic reload only",
				logger.Error(err))
		}
	}

	gc := scheduler.NewGarbageCollector(
		store,
		memIndex,
		loggerClient,
		cfg.GCInterval,
		scheduler.DefaultGCThreshold,
	)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		Sessions:       sessions,
		SessionMode:    sessionMode,
		Store:          store,
		Ventures:       memIndex,
		Events:         eventsClient,
		EventsCacheTTL: cfg.EventsCacheTTL,
		EventsBurst:    cfg.EventsBurst,
		EventsPerMin:   cfg.EventsPerMin,
		ProbeTimeout:   cfg.ProbeTimeout,
		ReloadTrigger:  reloadTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		memIndex:    memIndex,
		reloader:    reloader,
		watcher:     watcher,
		gc:          gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Jaayvee v%s on %s (%s)", version.Version, a.cfg.ListenPort, a.cfg.Environment)
	a.logger.Infof("Jaayvee %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start ventures reloader: %w", err)
	}
	a.logger.Info("ventures reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval),
		logger.Int("ventures", a.memIndex.Count()))

	if a.watcher != nil {
		a.watcher.Start(ctx)
		a.logger.Info("watching ventures file", logger.String("file", a.cfg.VenturesFile))
	}

	a.gc.Start(ctx)
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reloader.Stop()
	if a.watcher != nil {
		a.watcher.Stop()
	}
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Jaayvee stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
