package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bookinventory/internal/book"
	"bookinventory/internal/config"
	"bookinventory/internal/httpx"
	"bookinventory/internal/platform/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("cannot load configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	rateLimiter, err := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.TrustedProxies)
	if err != nil {
		logger.Error("invalid rate limiter settings", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("cannot open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer st.close()

	go rateLimiter.Run(ctx)

	service := book.NewService(st.repo, st.ids, logger)
	router := newRouter(cfg, logger, book.NewHTTPHandler(service, logger), st.ping, rateLimiter)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting server", "addr", cfg.Addr, "driver", cfg.StoreDriver)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// newRouter mounts health probes and the book routes behind the middleware
// stack. ping reports store readiness.
func newRouter(cfg config.Config, logger *slog.Logger, books *book.HTTPHandler, ping func(context.Context) error, rateLimiter *httpx.RateLimitMiddleware) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	books.Register(router)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(logger),
		httpx.RecoveryMiddleware(logger),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}

// store bundles the repository chosen by STORE_DRIVER with its identifier
// codec and lifecycle hooks.
type store struct {
	repo  book.Repository
	ids   book.IDCodec
	ping  func(context.Context) error
	close func()
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DSN, logger)
		if err != nil {
			return store{}, err
		}
		if cfg.AutoMigrate {
			if err := database.MigratePostgres(ctx, pool, logger); err != nil {
				pool.Close()
				return store{}, err
			}
		}
		return store{
			repo:  book.NewPostgresRepo(pool, cfg.DBTimeout),
			ids:   book.UUIDCodec{},
			ping:  pool.Ping,
			close: pool.Close,
		}, nil

	case config.DriverMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI, logger)
		if err != nil {
			return store{}, err
		}
		coll := client.Database(cfg.MongoDB).Collection(database.BooksCollection)
		if cfg.AutoMigrate {
			if err := database.EnsureMongoIndexes(ctx, coll); err != nil {
				_ = client.Disconnect(context.Background())
				return store{}, err
			}
		}
		return store{
			repo: book.NewMongoRepo(coll, cfg.DBTimeout),
			ids:  book.ObjectIDCodec{},
			ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close: func() {
				_ = client.Disconnect(context.Background())
			},
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return store{}, err
		}
		if cfg.AutoMigrate {
			if err := database.Migrate(ctx, db, database.DialectSQLite, logger); err != nil {
				db.Close()
				return store{}, err
			}
		}
		return store{
			repo:  book.NewSQLiteRepo(db, cfg.DBTimeout),
			ids:   book.UUIDCodec{},
			ping:  db.PingContext,
			close: func() { _ = db.Close() },
		}, nil
	}
	return store{}, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
