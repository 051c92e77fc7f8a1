package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"littlelibrary/internal/auth"
	"littlelibrary/internal/httpx"
	"littlelibrary/internal/library"
	"littlelibrary/internal/platform/identity"
	"littlelibrary/internal/platform/openlibrary"
	"littlelibrary/internal/search"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	loadEnvFiles()

	cfg, err := loadConfig()
	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, store, closeStore := mustOpenStore(ctx, cfg, logger)
	defer closeStore()

	verifier := mustNewVerifier(cfg, logger)

	olClient := openlibrary.NewClient(openlibrary.Config{
		BaseURL:    cfg.OpenLibraryBaseURL,
		UserAgent:  cfg.OpenLibraryUserAgent,
		RPS:        cfg.OpenLibraryRPS,
		MaxRetries: cfg.OpenLibraryMaxRetries,
		Timeout:    cfg.OpenLibraryTimeout,
	})
	searchService := search.NewService(olClient, cfg.OpenLibraryCoverURL, logger.Named("search"))

	router := newRouter(routes{
		library:  library.NewHTTPHandler(library.NewService(repo)),
		search:   search.NewHTTPHandler(searchService, cfg.SearchMaxLimit),
		auth:     auth.NewHTTPHandler(verifier, logger.Named("auth")),
		verifier: verifier,
		store:    store,
		logger:   logger,
	})

	rateLimiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies)
	go rateLimiter.Run(ctx)

	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger.Named("http")),
		httpx.RecoveryMiddleware(logger),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.OpenLibraryTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

type readyStore interface {
	library.Repository
	pinger
}

func mustOpenStore(ctx context.Context, cfg Config, logger *zap.Logger) (library.Repository, pinger, func()) {
	var store readyStore
	closeFn := func() {}

	switch cfg.StoreDriver {
	case storeMemory:
		repo, err := library.NewMemDBRepo()
		if err != nil {
			logger.Fatal("cannot create in-memory store", zap.Error(err))
		}
		logger.Warn("using in-memory store, data is lost on restart")
		store = repo
	default:
		pool := mustOpenDB(ctx, cfg.DatabaseDSN, logger)
		store = library.NewPostgresRepo(pool, cfg.DBTimeout)
		closeFn = pool.Close
	}
	return store, store, closeFn
}

func mustOpenDB(ctx context.Context, dsn string, logger *zap.Logger) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Fatal("cannot create db pool", zap.Error(err))
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logger.Fatal("cannot ping database", zap.String("dsn", redactDSN(dsn)), zap.Error(err))
	}
	logger.Info("database connection OK", zap.String("dsn", redactDSN(dsn)))
	return pool
}

func mustNewVerifier(cfg Config, logger *zap.Logger) identity.Verifier {
	icfg := identity.Config{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
	}
	if cfg.JWTPublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.JWTPublicKeyFile)
		if err != nil {
			logger.Fatal("cannot read identity provider public key", zap.String("path", cfg.JWTPublicKeyFile), zap.Error(err))
		}
		icfg.PublicKeyPEM = pem
	}

	verifier, err := identity.NewJWTVerifier(icfg)
	if err != nil {
		logger.Fatal("cannot create token verifier", zap.Error(err))
	}
	return verifier
}
