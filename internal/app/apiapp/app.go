package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mohammadarifzafra/topgrade-api/internal/config"
	"github.com/mohammadarifzafra/topgrade-api/internal/infra/httpclient"
	paymentinfra "github.com/mohammadarifzafra/topgrade-api/internal/infra/payment"
	s3infra "github.com/mohammadarifzafra/topgrade-api/internal/infra/s3"
	"github.com/mohammadarifzafra/topgrade-api/internal/jobs/cleanup"
	pgrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/postgres"
	redrepo "github.com/mohammadarifzafra/topgrade-api/internal/repo/redis"
	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
	bookmarksvc "github.com/mohammadarifzafra/topgrade-api/internal/services/bookmarks"
	catalogsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/catalog"
	contentsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/content"
	progresssvc "github.com/mohammadarifzafra/topgrade-api/internal/services/progress"
	purchasesvc "github.com/mohammadarifzafra/topgrade-api/internal/services/purchases"
	ratesvc "github.com/mohammadarifzafra/topgrade-api/internal/services/rate"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	cleanupJob *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	snapshotCache := redrepo.NewCatalogCacheRepo(redisClient, cfg.Catalog.SnapshotCacheTTL)

	catalogRepo := pgrepo.NewCatalogRepo(pool)
	purchaseRepo := pgrepo.NewPurchaseRepo(pool)
	topicProgressRepo := pgrepo.NewTopicProgressRepo(pool)
	courseProgressRepo := pgrepo.NewCourseProgressRepo(pool)
	bookmarkRepo := pgrepo.NewBookmarkRepo(pool)
	txRunner := pgrepo.NewTxRunner(pool)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.SessionTTL)

	catalogService := catalogsvc.NewService(catalogRepo, snapshotCache, log)

	paymentGateway := paymentinfra.NewClient(
		httpclient.New(cfg.Payment.Timeout),
		cfg.Payment.BaseURL,
		cfg.Payment.APIKey,
	)
	purchaseService := purchasesvc.NewService(purchasesvc.Dependencies{
		Catalog:   catalogRepo,
		Ledger:    purchaseRepo,
		Snapshots: catalogService,
		Progress:  courseProgressRepo,
		Gateway:   paymentGateway,
		Logger:    log,
	})

	progressService := progresssvc.NewService(progresssvc.Dependencies{
		Runner:  txRunner,
		Catalog: catalogService,
		Ledger:  purchaseRepo,
		Topics:  topicProgressRepo,
		Courses: courseProgressRepo,
		Logger:  log,
	})

	bookmarkService := bookmarksvc.NewService(bookmarkRepo, catalogService, log)

	videoStorage := contentsvc.NewS3Storage(s3Client, cfg.S3.Bucket)
	contentService := contentsvc.NewService(
		catalogService,
		purchaseService,
		videoStorage,
		cfg.Content.VideoURLTTL,
		log,
	)

	reportLimiter := ratesvc.NewLimiter(
		redrepo.NewRateRepo(redisClient),
		cfg.Rate.ReportsPerMinute,
		cfg.Rate.ReportsPerBurst,
	)

	cleanupJob := cleanup.New(purchaseRepo, cfg.Cleanup.MaxPendingAge, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		CatalogService:  catalogService,
		PurchaseService: purchaseService,
		ProgressService: progressService,
		BookmarkService: bookmarkService,
		ContentService:  contentService,
		ReportLimiter:   reportLimiter,
		Logger:          log,
		Config:          cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		cleanupJob: cleanupJob,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// CleanupJob exposes the stale-purchase canceller so the entrypoint can run
// it on a ticker.
func (a *App) CleanupJob() *cleanup.Job {
	return a.cleanupJob
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
