package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"artisanlink/internal/artisan"
	"artisanlink/internal/auth"
	"artisanlink/internal/blog"
	"artisanlink/internal/cart"
	"artisanlink/internal/category"
	"artisanlink/internal/config"
	"artisanlink/internal/db"
	"artisanlink/internal/handler"
	"artisanlink/internal/localstore"
	"artisanlink/internal/logger"
	"artisanlink/internal/middleware"
	"artisanlink/internal/moderation"
	"artisanlink/internal/product"
	"artisanlink/internal/user"
	"artisanlink/internal/wishlist"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	router, cleanup, err := newServer(cfg, database)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.AppEnv),
		)
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer wires repositories, services and the HTTP router. cleanup stops
// the background workers started here.
func newServer(cfg *config.Config, database *sql.DB) (http.Handler, func(), error) {
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	moderationSvc := moderation.NewService(moderation.NewRepository(database))
	productSvc := product.NewService(product.NewRepository(database), product.CacheConfig{
		Size: cfg.SnapshotCacheSize,
		TTL:  cfg.SnapshotCacheTTL,
	})

	files, err := localstore.NewFileStore(cfg.LocalStoreDir)
	if err != nil {
		return nil, nil, err
	}

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey)

	h := handler.New(handler.Deps{
		Users:      user.NewService(user.NewRepository(database), issuer),
		Tokens:     issuer,
		Products:   productSvc,
		Categories: category.NewService(category.NewRepository(database)),
		Artisans:   artisan.NewService(artisan.NewRepository(database), moderationSvc),
		Blog:       blog.NewService(blog.NewRepository(database)),
		Moderation: moderationSvc,

		CartRepo:     cart.NewRepository(database),
		WishlistRepo: wishlist.NewRepository(database),
		Devices: func(deviceID string) (localstore.Store, error) {
			return files.Device(deviceID)
		},

		SearchDebounce: cfg.SearchDebounce,
		SearchTimeout:  cfg.SearchTimeout,

		CORSOrigins:   cfg.CORSOrigins,
		Limiter:       limiter,
		SecureCookies: cfg.AppEnv == "production",
	})

	return h.Router(), limiter.Stop, nil
}
