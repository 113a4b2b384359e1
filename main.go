package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"investmentapp/src/api"
	"investmentapp/src/config"
	"investmentapp/src/database"
	"investmentapp/src/repositories"
	"investmentapp/src/services"
	"investmentapp/src/utils"
	aws_handler "investmentapp/src/utils/aws"
	redis_utils "investmentapp/src/utils/redis"
	"investmentapp/src/worker"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Println(err, "Error while loading .env")
	}

	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}

	logger := utils.NewLogger(utils.ParseLevel(cfg.Logging.Level), cfg.Logging.ToFile, cfg.Logging.FilePath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = utils.WithLogger(ctx, logger)

	httpServer, cleanup, err := run(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Error("Couldn't run")
		return
	}
	defer cleanup()

	errC := make(chan error, 1)
	go func() {
		logger.WithField("port", cfg.Service.Port).Infof("Starting %s server", cfg.Service.Type)

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		if err != nil {
			logger.WithError(err).Error("Error while running")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Error during shutdown")
		}
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*http.Server, func(), error) {
	store, closeStore, err := database.NewStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	if cfg.Service.Type == config.WORKER {
		server, err := worker.NewServer(cfg, logger, store)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		return worker.NewHTTPServer(cfg, server), func() {
			server.Close()
			closeStore()
		}, nil
	}

	cache, closeCache, err := newPortfolioCache(ctx, cfg)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	cleanup := func() {
		closeCache()
		closeStore()
	}

	if err := bootstrap(ctx, cfg, store, cache); err != nil {
		cleanup()
		return nil, nil, err
	}

	server, err := api.NewServer(cfg, logger, store, cache)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return api.NewHTTPServer(cfg, server), cleanup, nil
}

func newPortfolioCache(ctx context.Context, cfg *config.Config) (services.PortfolioCache, func(), error) {
	ttl, err := time.ParseDuration(cfg.Cache.PortfolioTTL)
	if err != nil {
		return nil, nil, err
	}
	if ttl <= 0 {
		return services.NoopPortfolioCache(), func() {}, nil
	}
	if !cfg.Databases.Redis.Enabled {
		return services.NewLocalPortfolioCache(ttl), func() {}, nil
	}

	handler, err := redis_utils.NewRedisHandler(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return services.NewRedisPortfolioCache(handler, ttl), func() { _ = handler.Close() }, nil
}

func bootstrap(ctx context.Context, cfg *config.Config, store *repositories.Store, cache services.PortfolioCache) error {
	if !cfg.Bootstrap.Admin && !cfg.Bootstrap.SeedDevData {
		return nil
	}

	var secrets services.SecretReader
	if cfg.Bootstrap.AdminPasswordSecretID != "" {
		awsHandler, err := aws_handler.NewAWSHandler(cfg.Bootstrap.AWSRegion)
		if err != nil {
			return err
		}
		secrets = awsHandler.SecretManager
	}

	holders := services.NewHolderService(store, cache)
	return services.NewBootstrapService(holders, services.NewInstrumentService(store), secrets).Run(ctx, cfg.Bootstrap)
}
