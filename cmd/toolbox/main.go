package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fblazt/toolbox/internal/config"
	"github.com/fblazt/toolbox/internal/database"
	grpcv2 "github.com/fblazt/toolbox/internal/grpc/v2"
	"github.com/fblazt/toolbox/internal/handlers"
	"github.com/fblazt/toolbox/internal/repositories"
	"github.com/fblazt/toolbox/internal/router"
	"github.com/fblazt/toolbox/internal/service"
	"github.com/fblazt/toolbox/internal/session"
	"github.com/fblazt/toolbox/internal/storage"
	"github.com/fblazt/toolbox/internal/tools/apitester"
	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Инициализация конфигурации
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatal("Ошибка конфигурации", zap.Error(err))
	}
	logger.Info("Конфигурация загружена",
		zap.String("address", cfg.ServerAddress),
		zap.String("mode", cfg.Mode),
		zap.String("batch_policy", cfg.ImageBatchPolicy),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Сервер остановлен с ошибкой", zap.Error(err))
	}
	logger.Info("Сервер корректно завершил работу")
}

// openStorage выбирает хранилище по режиму конфигурации.
func openStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.KV, error) {
	switch cfg.Mode {
	case config.ModeDatabase:
		if err := database.Migrate(cfg.DatabaseDSN, logger); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}
		db, err := database.NewDB(ctx, cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return repositories.NewKVRepository(db), nil
	case config.ModeRedis:
		return storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.ModeSQLite:
		return storage.NewSQLiteStore(ctx, cfg.SQLitePath)
	case config.ModeFile:
		return storage.NewFileStore(cfg.FileStoragePath, logger), nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

// newService собирает сервис инструментов поверх хранилища.
func newService(cfg *config.Config, store storage.KV, logger *zap.Logger) *service.ToolboxService {
	conv := imageconv.NewConverter()
	conv.MaxPixels = cfg.ImageMaxPixels
	pipeline := imageconv.NewPipeline(conv, cfg.ImageMaxParallel, logger)
	client := apitester.NewClient(cfg.APITesterTimeout, cfg.APITesterAllowPrivate)
	return service.NewToolboxService(store, client, pipeline, cfg.Policy(), "/api/images", logger)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := newService(cfg, store, logger)
	sess := session.New(cfg.SessionSecret)
	handler := handlers.NewHandler(svc, sess, logger, cfg.MaxUploadBytes, cfg.ImageQuality)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.NewRouter(handler, sess, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Сервер запущен", zap.String("address", cfg.ServerAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var grpcServer *grpc.Server
	if cfg.GRPCAddress != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddress)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(grpcv2.LoggingInterceptor(logger)))
		grpcv2.Register(grpcServer, grpcv2.NewGRPCServer(svc, logger))
		go func() {
			logger.Info("gRPC сервер запущен", zap.String("address", cfg.GRPCAddress))
			if err := grpcServer.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	go sweepLoop(ctx, svc, cfg.WorkspaceIdle)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	logger.Info("Получен сигнал завершения, останавливаем сервер")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	return srv.Shutdown(shutdownCtx)
}

// sweepLoop периодически освобождает состояние неактивных клиентов.
func sweepLoop(ctx context.Context, svc *service.ToolboxService, idle time.Duration) {
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Sweep(idle)
		}
	}
}
