package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/thierry260/vibewise-backend/internal/api"
	"github.com/thierry260/vibewise-backend/internal/config"
	"github.com/thierry260/vibewise-backend/internal/core"
	"github.com/thierry260/vibewise-backend/internal/crypto"
	"github.com/thierry260/vibewise-backend/internal/db"
	"github.com/thierry260/vibewise-backend/internal/events"
	"github.com/thierry260/vibewise-backend/internal/firebase"
	"github.com/thierry260/vibewise-backend/internal/identity"
	"github.com/thierry260/vibewise-backend/internal/metrics"
	"github.com/thierry260/vibewise-backend/internal/middleware"
	"github.com/thierry260/vibewise-backend/pkg/cache"
	"github.com/thierry260/vibewise-backend/pkg/mailer"
	"github.com/thierry260/vibewise-backend/pkg/messagequeue"
)

const magicLinkBurst = 3

func main() {
	// .env is only read outside release mode; in production variables are set directly.
	if os.Getenv("GIN_MODE") != gin.ReleaseMode {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	logger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer logger.Sync()

	if err := run(appConfig, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
	logger.Info("Server exiting gracefully.")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	if cfg.IsRelease() {
		zapConfig = zap.NewProductionConfig()
	}
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}
	return zapConfig.Build()
}

func run(appConfig *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initCtx, cancelInit := context.WithTimeout(ctx, 15*time.Second)
	defer cancelInit()

	clients, err := firebase.Init(ctx, appConfig, logger)
	if err != nil {
		return fmt.Errorf("initialize Firebase Admin SDK: %w", err)
	}
	defer clients.Close()

	userRepo, err := db.NewFirestoreUserDocumentRepository(clients.Firestore)
	if err != nil {
		return err
	}

	store, err := newStore(initCtx, appConfig, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	idp, err := newIdentityClient(initCtx, appConfig, clients, logger)
	if err != nil {
		return err
	}

	authMetrics := metrics.NewAuth()
	seeder := core.NewSeeder(userRepo, logger, core.WithTransactions(appConfig.SeedTransactional))
	authService, err := core.NewAuthService(core.AuthServiceConfig{
		Identity: idp,
		Seeder:   seeder,
		Users:    userRepo,
		Store:    store,
		Metrics:  authMetrics,
		Logger:   logger,
		EmailTTL: appConfig.MagicLinkEmailTTL,
	})
	if err != nil {
		return err
	}

	authService.OnAuthStateChanged(events.NewLogObserver(logger))
	if appConfig.RabbitMQURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{URL: appConfig.RabbitMQURL}, logger)
		if err != nil {
			return err
		}
		defer mq.Close()

		queueObserver := events.NewQueueObserver(events.QueueObserverConfig{
			Publisher: mq,
			Queue:     appConfig.AuthEventsQueue,
		}, logger)
		authService.OnAuthStateChanged(queueObserver)
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := queueObserver.Close(closeCtx); err != nil {
				logger.Warn("Auth events not fully flushed", zap.Error(err))
			}
		}()
		logger.Info("Publishing auth events", zap.String("queue", appConfig.AuthEventsQueue))
	}

	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig.ClientURL))
		logger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		logger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured")
	}

	limiter := middleware.NewIPRateLimiter(appConfig.MagicLinkRatePerMinute, magicLinkBurst, logger)

	api.SetupRoutes(router, api.RouteDeps{
		AuthService:      authService,
		AuthMiddleware:   middleware.NewAuthMiddleware(clients.Auth, logger),
		MagicLinkLimiter: limiter,
		Metrics:          authMetrics.Handler(),
		Logger:           logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("address", httpServer.Addr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// newStore returns the key-value store backing OAuth state and emailForSignIn:
// Redis when REDIS_ADDRESS is set, memory otherwise, sealed with AES when
// ENCRYPTION_KEY is set.
func newStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.Cache, error) {
	var store cache.Cache
	if cfg.RedisAddress != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.NewRedisCacheConfig{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return nil, err
		}
		store = redisCache
	} else {
		logger.Warn("REDIS_ADDRESS not set, using in-memory store; sign-in state is lost on restart and not shared between instances")
		store = cache.NewMemoryCache(time.Minute)
	}

	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		store.Close()
		return nil, err
	}
	if key == nil {
		return store, nil
	}
	sealer, err := crypto.NewAESSealer(key)
	if err != nil {
		store.Close()
		return nil, err
	}
	return cache.NewSealedCache(store, sealer), nil
}

func newIdentityClient(ctx context.Context, cfg *config.Config, clients *firebase.Clients, logger *zap.Logger) (*identity.Client, error) {
	opts := identity.Options{
		APIKey: cfg.FirebaseAPIKey,
		OAuth:  identity.GoogleOAuthConfig(cfg.GoogleOAuthClientID, cfg.GoogleOAuthClientSecret, cfg.GoogleOAuthRedirectURL),
		Admin:  clients.Auth,
	}
	if cfg.MagicLinkDelivery == config.DeliverySMTP {
		m, err := mailer.New(mailer.Config{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPass,
			Sender: cfg.SMTPSender,
		})
		if err != nil {
			return nil, err
		}
		opts.Links = identity.NewMailLinkSender(clients.Auth, m)
	}
	logger.Info("Magic links delivered", zap.String("delivery", cfg.MagicLinkDelivery))
	return identity.NewClient(ctx, opts, logger)
}
