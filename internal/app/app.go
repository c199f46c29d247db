package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudnotes/cloudnotes/internal/config"
	"github.com/cloudnotes/cloudnotes/internal/httpserver"
	"github.com/cloudnotes/cloudnotes/internal/httpserver/deps"
	"github.com/cloudnotes/cloudnotes/internal/identity"
	"github.com/cloudnotes/cloudnotes/internal/logger"
	"github.com/cloudnotes/cloudnotes/internal/metrics"
	"github.com/cloudnotes/cloudnotes/internal/notes"
	"github.com/cloudnotes/cloudnotes/internal/quota"
	"github.com/cloudnotes/cloudnotes/internal/redis"
	"github.com/cloudnotes/cloudnotes/internal/retry"
	"github.com/cloudnotes/cloudnotes/internal/scheduler"
	"github.com/cloudnotes/cloudnotes/internal/store/memory"
	mongostore "github.com/cloudnotes/cloudnotes/internal/store/mongo"
	redisstore "github.com/cloudnotes/cloudnotes/internal/store/redis"
	"github.com/cloudnotes/cloudnotes/internal/templates"
	"github.com/cloudnotes/cloudnotes/internal/utils"
	"github.com/cloudnotes/cloudnotes/internal/version"
)

// repository is what the app needs from a note store.
type repository interface {
	notes.Repository
	deps.Pinger
}

type namedCloser struct {
	name string
	c    io.Closer
}

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	reloader *scheduler.TemplateReloader
	indexGC  *scheduler.IndexGC // redis only
	closers  []namedCloser
}

// New wires configuration, store, service and HTTP server. It fails when
// the configured store cannot be reached within its retry budget.
func New(ctx context.Context) (*App, error) {
	cfg := config.Load()
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	a := &App{cfg: cfg, logger: loggerClient}

	repo, err := a.openStore(ctx)
	if err != nil {
		a.closeAll()
		return nil, err
	}

	accountant := quota.NewAccountant(repo, quota.LimitBytes)
	svc := notes.NewService(repo, accountant, loggerClient, notes.Options{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})

	catalog := templates.NewCatalog()
	reloadTrigger := make(chan struct{}, 1)
	a.reloader = scheduler.NewTemplateReloader(
		cfg.TemplateFile,
		catalog,
		loggerClient,
		cfg.TemplateReloadInterval,
		reloadTrigger,
	)

	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Build:         version.Get(),
		Notes:         svc,
		Templates:     catalog,
		Verifier:      identity.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Store:         repo,
		StoreKind:     cfg.Store,
		Metrics:       metrics.NewMetrics(version.Version),
		FrontendURL:   cfg.FrontendURL,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateBurst,
		RatePerMin:    cfg.RatePerMin,
		ReloadTrigger: reloadTrigger,
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

func (a *App) openStore(ctx context.Context) (repository, error) {
	cfg := a.cfg
	policy := retry.Policy{
		Timeout:       cfg.RedisConnectTimeout,
		Initial:       cfg.RedisRetryInterval,
		MaxWait:       cfg.RedisMaxWait,
		PingTimeout:   cfg.RedisPingTimeout,
		WarnThreshold: cfg.RedisWarnThreshold,
	}

	switch cfg.Store {
	case config.StoreRedis:
		a.logger.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:         cfg.RedisAddr,
			User:         cfg.RedisUser,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  cfg.RedisDT,
			ReadTimeout:  cfg.RedisRT,
			WriteTimeout: cfg.RedisWT,
			PoolSize:     cfg.RedisPoolSize,
			Retry:        policy,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, namedCloser{"redis", client})

		store := redisstore.NewStore(client)
		a.indexGC = scheduler.NewIndexGC(store, a.logger, cfg.RedisIndexGC)
		a.logger.Info("Redis initialized successfully")
		return store, nil

	case config.StoreMongo:
		policy.Timeout = cfg.MongoTimeout
		a.logger.Info("Connecting to MongoDB", logger.String("database", cfg.MongoDatabase))
		client, err := mongostore.Connect(ctx, mongostore.ConnectOptions{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Retry:    policy,
		}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.closers = append(a.closers, namedCloser{"mongo", utils.CloserFunc(func() error {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return client.Disconnect(dctx)
		})})

		store := mongostore.NewStore(client, cfg.MongoDatabase)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create mongo indexes: %w", err)
		}
		a.logger.Info("MongoDB initialized successfully")
		return store, nil

	default:
		a.logger.Warn("using in-memory store, notes are lost on restart")
		return memory.NewStore(), nil
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting CloudNotes %s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.Store)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.closeAll()

	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start template reloader: %w", err)
	}
	a.logger.Info("template reloader started",
		logger.Duration("interval", a.cfg.TemplateReloadInterval))

	if a.indexGC != nil {
		a.indexGC.Start(ctx)
		a.logger.Info("redis index gc started",
			logger.Duration("interval", a.cfg.RedisIndexGC))
	}

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
		a.stopBackground()
		return err
	}

	a.stopBackground()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ CloudNotes stopped cleanly")
	return nil
}

func (a *App) stopBackground() {
	a.reloader.Stop()
	if a.indexGC != nil {
		a.indexGC.Stop()
	}
}

func (a *App) closeAll() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		utils.MustClose(a.closers[i].c, a.closers[i].name, a.logger)
	}
	a.closers = nil
	_ = a.logger.Sync()
}
