package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/childbooklet/booklet-server-go/internal/config"
	"github.com/childbooklet/booklet-server-go/internal/database"
	"github.com/childbooklet/booklet-server-go/internal/handler"
	"github.com/childbooklet/booklet-server-go/internal/jobs"
	"github.com/childbooklet/booklet-server-go/internal/middleware"
	"github.com/childbooklet/booklet-server-go/internal/oidc"
	"github.com/childbooklet/booklet-server-go/internal/redis"
	"github.com/childbooklet/booklet-server-go/internal/repository"
	"github.com/childbooklet/booklet-server-go/internal/service"
	"github.com/childbooklet/booklet-server-go/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != "" || os.Getenv("K_SERVICE") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply schema")
	}
	cancel()
	log.Info().Msg("database connected")

	// The mock identity store lives in a separate database owned by the
	// identity provider. The pool is opened without dialing so an outage at
	// boot leaves the identity routes registered; request-time failures
	// surface as the service's degraded responses instead.
	var identityDB *database.DB
	if cfg.IdentityStoreConfigured() {
		identityDB, err = database.Open(cfg.IdentityDatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("invalid identity store configuration, identity routes disabled")
			identityDB = nil
		} else {
			defer identityDB.Close()
			pingCtx, pingCancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
			if err := identityDB.Ping(pingCtx); err != nil {
				log.Warn().Err(err).Msg("identity store unreachable, serving identity routes degraded")
			} else {
				log.Info().Msg("identity store connected")
			}
			pingCancel()
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
	}

	childRepo := repository.NewChildRecordRepository(db.DB)
	adminRepo := repository.NewAdminUserRepository(db.DB)

	sessionStore := session.New(cfg.SessionSecret, cfg.SessionTTL())

	cleanupJob := jobs.NewCleanupJob(config.CleanupJobInterval)
	if memStore, ok := sessionStore.(*session.MemoryStore); ok {
		cleanupJob.Register("sessions", memStore.Purge)
	}

	var codeCache oidc.CodeCache
	if redisClient != nil {
		codeCache = oidc.NewRedisCodeCache(redisClient.Client, config.ConsumedCodeTTL)
	} else {
		memCache := oidc.NewMemoryCodeCache(config.ConsumedCodeTTL)
		cleanupJob.Register("consumed codes", memCache.Purge)
		codeCache = memCache
	}

	authService := service.NewAuthService(adminRepo, sessionStore)
	ingestService := service.NewIngestService(childRepo)
	childService := service.NewChildService(childRepo)

	var identityService *service.IdentityService
	if identityDB != nil {
		identityService = service.NewIdentityService(repository.NewIdentityRepository(identityDB.DB))
	}

	seedCtx, seedCancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := authService.SeedDefaultAdmin(seedCtx, cfg.AdminUsername, cfg.AdminPasswordHash); err != nil {
		log.Error().Err(err).Msg("failed to seed default admin")
	}
	seedCancel()

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	var limiterBackend service.RateLimiter
	if redisClient != nil {
		limiterBackend = service.NewRateLimiter(redisClient.Client)
	} else {
		limiterBackend = service.NewRateLimiter(nil)
	}
	loginRateLimiter := middleware.NewLoginRateLimiter(limiterBackend)
	if memLimiter, ok := limiterBackend.(*service.MemoryRateLimiter); ok {
		cleanupJob.Register("rate limit windows", memLimiter.Purge)
	}

	childHandler := handler.NewChildHandler(ingestService, childService)
	adminHandler := handler.NewAdminHandler(authService, childService, identityService, authMiddleware.Handler, loginRateLimiter)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	if cfg.OIDCConfigured() {
		key, err := oidc.ParsePrivateKey(cfg.OIDCPrivateKey)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to parse OIDC private key")
		}
		signer := oidc.NewSigner(cfg.OIDCClientID, key)
		oidcClient := oidc.NewClient(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCRedirectURI, signer, cfg.OIDCHTTPTimeout())
		exchangeService := service.NewExchangeService(oidcClient, codeCache)

		r.Mount("/", handler.NewOIDCHandler(exchangeService).Routes())
		log.Info().Str("issuer", cfg.OIDCIssuer).Msg("token exchange enabled")
	}

	r.Route("/api", func(r chi.Router) {
		r.Mount("/admin", adminHandler.Routes())
		r.Mount("/child", childHandler.Routes())
		r.Get("/user/records", childHandler.UserRecords)
	})

	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
