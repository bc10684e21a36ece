package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gamesave/internal/adapters"
	"gamesave/internal/bootstrap"
	savesDelivery "gamesave/internal/delivery/saves"
	"gamesave/internal/engine"
	ownMiddleware "gamesave/internal/middleware"
	repo "gamesave/internal/repository"
	savesuc "gamesave/internal/usecase/saves"
)

type mainDeliveryHandler struct {
	saves *savesDelivery.SaveHandler
}

type closer interface {
	Close(ctx context.Context) error
}

func main() {
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		NewLogger(false).Error("Failed to setup configuration", zap.Error(err))
		return
	}
	logger := NewLogger(cfg.LogDebug)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore := initSlotStore(ctx, logger, cfg)
	if closeStore != nil {
		defer closeStore.Close(context.Background())
	}

	session := engine.NewSession(logger, cfg.SceneIDs32()...)
	saveUC := savesuc.NewSaveUseCase(store, session, cfg.SaveVersion, cfg.StagedLoad, logger)

	r := chi.NewRouter()
	handlers := &mainDeliveryHandler{
		saves: savesDelivery.NewSaveHandler(logger, saveUC, savesDelivery.NewProgressHub(logger)),
	}
	handlers.Router(r, cfg.IsLocalCors)

	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}
	go handleShutdown(ctx, cancel, srv, logger)

	logger.Infof("Server is running on port %s (storage: %s)", cfg.ServerPort, cfg.StorageBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger(debug bool) *zap.SugaredLogger {
	build := zap.NewProduction
	if debug {
		build = zap.NewDevelopment
	}
	logger, err := build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h.saves.Routes(r)
}

// initSlotStore picks the save backend named by STORAGE_BACKEND. The
// returned closer is nil for the filesystem backend.
func initSlotStore(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) (savesuc.SlotStore, closer) {
	switch cfg.StorageBackend {
	case bootstrap.BackendRedis:
		redisAdapter := adapters.NewAdapterRedis(cfg, log)
		if err := redisAdapter.Init(ctx); err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		return repo.NewRedisSlotStore(redisAdapter.GetClient(), cfg.RedisPrefix, log), redisAdapter

	case bootstrap.BackendMongo:
		mongoAdapter := adapters.NewAdapterMongo(cfg, log)
		if err := mongoAdapter.Init(ctx); err != nil {
			log.Fatal("Failed to init MongoDB", zap.Error(err))
		}
		return repo.NewMongoSlotStore(mongoAdapter.Database, cfg.MongoCollection, log), mongoAdapter
	}

	log.Infow("Using filesystem saves", "dir", cfg.SaveDir)
	return repo.NewFileSlotStore(cfg.SaveDir, cfg.SaveExt, log), nil
}

func handleShutdown(ctx context.Context, cancelFunc context.CancelFunc, srv *http.Server, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigs:
	case <-ctx.Done():
	}
	log.Info("Received shutdown signal")
	cancelFunc()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
}
