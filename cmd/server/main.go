package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gstreco/internal/auth"
	"gstreco/internal/config"
	"gstreco/internal/handler"
	"gstreco/internal/logging"
	"gstreco/internal/port"
	"gstreco/internal/repository/memory"
	"gstreco/internal/repository/postgres"
	"gstreco/internal/repository/redis"
	"gstreco/internal/router"
	"gstreco/internal/service"
	s3storage "gstreco/internal/storage/s3"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.Fatal(err)
	}
}

func run() error {
	// A missing .env file is fine outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.Setup(&cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	var rdb *goredis.Client
	if cfg.Redis.Enabled() {
		rdb, err = redis.Connect(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
	}

	// Initialize repositories
	sessionRepo := postgres.NewSessionRepo(db)
	carryForward, err := newCarryForwardStore(&cfg.Reconcile, db, rdb)
	if err != nil {
		return err
	}
	locker, err := newSessionLocker(&cfg.Reconcile, rdb)
	if err != nil {
		return err
	}

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize services
	reconSvc := service.NewReconciliationService(sessionRepo, carryForward, locker, s3Client, &cfg.Reconcile, &cfg.S3)

	// Initialize handlers
	reconH := handler.NewReconciliationHandler(reconSvc, cfg.Server.MaxUploadMB)
	healthH := handler.NewHealthHandler(db, rdb)

	// Setup router
	r := router.Setup(auth.NewTokenValidator(&cfg.JWT), cfg.CORS.AllowedOrigins, reconH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":          cfg.Server.Port,
			"store":         cfg.Reconcile.CarryForwardStore,
			"lock_provider": cfg.Reconcile.LockProvider,
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func newCarryForwardStore(cfg *config.ReconcileConfig, db *sqlx.DB, rdb *goredis.Client) (port.CarryForwardStore, error) {
	switch cfg.CarryForwardStore {
	case config.StoreRedis:
		if rdb == nil {
			return nil, errors.New("redis carry forward store requires GSTRECO_REDIS_ADDR")
		}
		return redis.NewCarryForwardStore(rdb), nil
	case config.StorePostgres, "":
		return postgres.NewCarryForwardRepo(db), nil
	default:
		return nil, fmt.Errorf("unknown carry forward store %q", cfg.CarryForwardStore)
	}
}

func newSessionLocker(cfg *config.ReconcileConfig, rdb *goredis.Client) (port.SessionLocker, error) {
	switch cfg.LockProvider {
	case config.LockRedis:
		if rdb == nil {
			return nil, errors.New("redis lock provider requires GSTRECO_REDIS_ADDR")
		}
		return redis.NewSessionLocker(redislock.New(rdb), cfg.LockTTL), nil
	case config.LockLocal, "":
		return memory.NewSessionLocker(), nil
	default:
		return nil, fmt.Errorf("unknown lock provider %q", cfg.LockProvider)
	}
}
