package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"techmart-assistant/internal/config"
	"techmart-assistant/internal/db"
	apihttp "techmart-assistant/internal/http"
	"techmart-assistant/internal/repository"
	"techmart-assistant/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool, logger); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
			_ = redisClient.Close()
			redisClient = nil
		}
		cancel()
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessionRepo, closeSessions := buildSessionStore(cfg, pool, redisClient, logger)
	defer closeSessions()

	catalogRepo := buildCatalogRepo(cfg, pool, logger)
	catalog, err := service.NewCatalogProvider(ctx, catalogRepo, logger)
	if err != nil {
		logger.Fatal("catalog load", zap.Error(err))
	}
	if fileRepo, ok := catalogRepo.(*repository.FileCatalogRepository); ok && cfg.CatalogWatch {
		go watchCatalog(ctx, fileRepo.Path(), catalog, logger)
	}

	var (
		userRepo    repository.UserRepository = repository.NewMemoryUserRepository()
		tokenStore  service.RefreshTokenStore
		locker      = service.NewMemorySessionLocker()
		chatLimiter = service.NewMemoryRateLimiter(cfg.ChatRateWindow(), cfg.ChatRateLimit)
	)
	if pool != nil {
		userRepo = repository.NewPgUserRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, users are kept in memory")
	}
	if redisClient != nil {
		tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		locker = service.NewRedisSessionLocker(redisClient, cfg.SessionLockTTL())
		chatLimiter = service.NewRedisRateLimiter(redisClient, cfg.ChatRateWindow(), cfg.ChatRateLimit)
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	chatSvc := service.NewChatService(
		logger,
		catalog,
		service.NewIntentRouter(service.NewRandomSource()),
		service.NewResponseComposer(),
		service.NewSessionManager(sessionRepo),
		locker,
	)
	userSvc := service.NewUserService(logger, userRepo)

	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)
	productHandler := apihttp.NewProductHandler(logger, catalog)
	chatHandler := apihttp.NewChatHandler(logger, chatSvc, chatLimiter)
	router := apihttp.NewRouter(logger, jwtSvc, cfg.CORSAllowedOrigins, userHandler, productHandler, chatHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("session_store", cfg.SessionStore),
		zap.String("catalog_source", cfg.CatalogSource),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}

// buildSessionStore elige el backend de sesiones segun SESSION_STORE.
func buildSessionStore(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger) (repository.SessionRepository, func()) {
	noop := func() {}
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		if pool == nil {
			logger.Fatal("SESSION_STORE=postgres requires DATABASE_URL")
		}
		return repository.NewPgSessionRepository(pool), noop
	case config.SessionStoreRedis:
		if redisClient == nil {
			logger.Fatal("SESSION_STORE=redis requires a reachable REDIS_ADDR")
		}
		return repository.NewRedisSessionRepository(redisClient), noop
	case config.SessionStoreSQLite:
		repo, err := repository.NewSQLiteSessionRepository(cfg.SQLitePath)
		if err != nil {
			logger.Fatal("sqlite open", zap.Error(err), zap.String("path", cfg.SQLitePath))
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("sqlite close", zap.Error(err))
			}
		}
	case config.SessionStoreMemory, "":
		return repository.NewMemorySessionRepository(), noop
	default:
		logger.Fatal("unknown SESSION_STORE", zap.String("value", cfg.SessionStore))
		return nil, noop
	}
}

func buildCatalogRepo(cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger) repository.CatalogRepository {
	switch cfg.CatalogSource {
	case config.CatalogSourcePostgres:
		if pool == nil {
			logger.Fatal("CATALOG_SOURCE=postgres requires DATABASE_URL")
		}
		return repository.NewPgCatalogRepository(pool)
	case config.CatalogSourceFile, "":
		return repository.NewFileCatalogRepository(cfg.CatalogFile)
	default:
		logger.Fatal("unknown CATALOG_SOURCE", zap.String("value", cfg.CatalogSource))
		return nil
	}
}

// watchCatalog recarga el catalogo cuando cambia el archivo. Un archivo invalido deja el snapshot anterior.
func watchCatalog(ctx context.Context, path string, catalog *service.CatalogProvider, logger *zap.Logger) {
	watcher, err := repository.NewCatalogWatcher(path, logger)
	if err != nil {
		logger.Warn("catalog watcher disabled", zap.Error(err))
		return
	}
	err = watcher.Watch(ctx, func() {
		if err := catalog.Reload(ctx); err != nil {
			logger.Warn("catalog reload failed", zap.Error(err))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("catalog watcher stopped", zap.Error(err))
	}
}
