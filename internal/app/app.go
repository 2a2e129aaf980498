package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/MametaroGG/BoothPic/internal/cfg"
	v1Http "github.com/MametaroGG/BoothPic/internal/delivery/v1/http"
	"github.com/MametaroGG/BoothPic/internal/domain"
	embedderInfra "github.com/MametaroGG/BoothPic/internal/infrastructure/embedder"
	"github.com/MametaroGG/BoothPic/internal/infrastructure/feed"
	"github.com/MametaroGG/BoothPic/internal/infrastructure/fetcher"
	"github.com/MametaroGG/BoothPic/internal/infrastructure/kafka"
	"github.com/MametaroGG/BoothPic/internal/proto"
	pgdbRepo "github.com/MametaroGG/BoothPic/internal/repository/pgdb"
	qdrantRepo "github.com/MametaroGG/BoothPic/internal/repository/qdrant"
	redisRepo "github.com/MametaroGG/BoothPic/internal/repository/redis"
	"github.com/MametaroGG/BoothPic/internal/usecase"
	"github.com/MametaroGG/BoothPic/pkg/clients"
	"github.com/MametaroGG/BoothPic/pkg/closer"
	"github.com/MametaroGG/BoothPic/pkg/e"
	"github.com/MametaroGG/BoothPic/pkg/imaging"
	"github.com/MametaroGG/BoothPic/pkg/logger"
	"github.com/MametaroGG/BoothPic/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	minioClient "github.com/minio/minio-go/v7"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App связывает конфигурацию, инфраструктуру и усекейсы в работающий сервис.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	progress   *domain.Progress
	indexingUC *usecase.IndexingUseCase
	searchUC   *usecase.SearchUseCase
	optOutUC   *usecase.OptOutUseCase
}

// NewApp инициализирует все зависимости. Ресурсы регистрируются в closer по
// мере создания и закрываются в обратном порядке при остановке.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(0)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("postgres", func(ctx context.Context) error {
		db.Close()
		return nil
	})

	qdrant, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	err = clients.EnsureCollection(qdrantCtx, qdrant)
	qdrantCancel()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("qdrant", func(ctx context.Context) error {
		return qdrant.Client.Close()
	})

	redis := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), initTimeout)
	err = redis.Ping(redisCtx)
	redisCancel()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("redis", func(ctx context.Context) error {
		return redis.Client.Close()
	})

	var minio *minioClient.Client
	if cfg.Minio.Enabled {
		minio, err = clients.NewMinIOClient(cfg.Minio)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	conn, err := grpc.NewClient(
		cfg.Embedder.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()), // CLIP-сервис живёт в той же сети, без TLS
	)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("embedder conn", func(ctx context.Context) error {
		return conn.Close()
	})

	producer := kafka.NewProducer(log, cfg.Kafka)
	if err := producer.EnsureTopic(initTimeout); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add("kafka producer", func(ctx context.Context) error {
		return producer.Close()
	})

	pointRepo := qdrantRepo.NewPointRepo(qdrant.Client, cfg.Qdrant)
	runRepo := pgdbRepo.NewRunRepo(db.Pool)
	optOutRepo := pgdbRepo.NewOptOutRepo(db.Pool)
	cacheRepo := redisRepo.NewSearchCacheRepo(redis, cfg.Redis, log)

	loader := feed.NewLoader(cfg.Indexer.FeedPath, log)
	images := fetcher.NewFetcher(cfg.Indexer, minio, cfg.Minio, log)
	embedder := embedderInfra.NewEmbedderService(
		proto.NewEmbedderClient(conn),
		cfg.Embedder.MaxConcurrent,
		cfg.Embedder.MaxRetries,
		log,
	)

	progress := domain.NewProgress()
	normalizer := imaging.NewNormalizer()

	return &App{
		cfg:      cfg,
		logger:   log,
		closer:   cl,
		progress: progress,
		indexingUC: usecase.NewIndexingUC(
			loader, images, embedder, pointRepo, runRepo, producer, progress, log, cfg.Indexer,
		),
		searchUC: usecase.NewSearchUC(
			embedder, normalizer, pointRepo, optOutRepo, cacheRepo, progress, log, cfg.Qdrant,
		),
		optOutUC: usecase.NewOptOutUC(optOutRepo, producer, log),
	}, nil
}

// Run поднимает HTTP-сервер и блокируется до сигнала остановки или фатальной
// ошибки сервера. При включённом SEED_ON_START индексация идёт в фоне.
func (a *App) Run() error {
	if a.cfg.Indexer.SeedOnStart {
		go func() {
			if _, err := a.indexingUC.Seed(context.Background()); err != nil {
				a.logger.Errorf(err, "background seeding failed")
			}
		}()
	}

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, a.logger)
	router.Init(a.searchUC, a.optOutUC, a.progress, a.cfg.Indexer.ImageRoot)

	httpSrv := v1Http.NewServer(r, a.cfg.Http)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed")
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("resource shutdown: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// Seed выполняет один запуск индексации и освобождает ресурсы.
// Точка входа для одноразового запуска из cmd/seeder.
func (a *App) Seed(ctx context.Context) error {
	report, err := a.indexingUC.Seed(ctx)
	if report != nil {
		a.logger.Infof("seed report: processed=%d indexed=%d upserts=%d early_exit=%v",
			report.Processed, report.Indexed, report.Upserts, report.EarlyExit)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if cerr := a.closer.Close(closeCtx); cerr != nil {
		a.logger.Warnf("resource shutdown: %v", cerr)
	}

	return err
}

func initPGDB(log logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		log.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
