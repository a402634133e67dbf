package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/adapters/catalog"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/events"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/gateway"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/quotecache"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/shipping"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/storage"
	"github.com/nezferoz/fashion-park-sub001/internal/config"
	"github.com/nezferoz/fashion-park-sub001/internal/handlers/http_handlers"
	"github.com/nezferoz/fashion-park-sub001/internal/runner"
	"github.com/nezferoz/fashion-park-sub001/internal/service"
	"github.com/nezferoz/fashion-park-sub001/pkg/kafka"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
	"github.com/nezferoz/fashion-park-sub001/pkg/metrics"
	"github.com/nezferoz/fashion-park-sub001/pkg/postgres"
)

func main() {
	ctx := context.Background()

	// use OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	// put a new zap logger into context
	ctx, _ = logger.New(ctx)

	cfg, err := config.TryRead()
	if err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to load config", zap.Error(err))
	}

	serviceCfg := cfg.CheckoutService
	externalTimeout := time.Duration(serviceCfg.ExternalTimeoutMS) * time.Millisecond

	//region connections

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to connect to postgres", zap.Error(err))
	}
	logger.GetLoggerFromCtx(ctx).Info(ctx, "connected to postgres")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err = rdb.Ping(ctx).Err(); err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to connect to redis", zap.Error(err))
	}

	err = kafka.CreateTopicIfNotExists(cfg.Kafka, serviceCfg.PaidEventsTopic, 1, 1)
	if err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to create kafka topic", zap.Error(err))
	}
	paidEventsWriter := kafka.NewWriter(cfg.Kafka, serviceCfg.PaidEventsTopic)
	//endregion

	//region services
	transactionStorage := storage.NewTransactionStoragePostgres(pool)
	productCatalog := catalog.NewCatalogStoragePostgres(pool)
	cartSource := catalog.NewCartStoragePostgres(pool)
	customerSource := catalog.NewCustomerStoragePostgres(pool)

	rateClient := shipping.NewRateClient(cfg.RajaOngkir.BaseURL, cfg.RajaOngkir.APIKey, externalTimeout)
	snapGateway := gateway.NewSnapGateway(cfg.Midtrans.BaseURL, cfg.Midtrans.ServerKey, externalTimeout)
	quoteCache := quotecache.NewQuoteCacheRedis(rdb, time.Duration(serviceCfg.QuoteCacheTTLSec)*time.Second)
	paidEvents := events.NewKafkaEventPublisher(paidEventsWriter)

	draftService := service.NewDraftService(productCatalog, cartSource)
	quoteService := service.NewQuoteService(rateClient, quoteCache, externalTimeout)
	checkoutService := service.NewCheckoutService(transactionStorage, snapGateway, externalTimeout)
	reconcileService := service.NewReconcileService(transactionStorage, snapGateway, paidEvents)
	//endregion

	checkoutMetrics := metrics.NewCheckoutMetrics("checkout_service")

	e := echo.New()
	e.HideBanner = true
	e.Use(http_handlers.LoggingMiddleware())
	e.Use(http_handlers.MetricsMiddleware(checkoutMetrics))

	handler := http_handlers.NewCheckoutHandler(
		draftService, quoteService, checkoutService, reconcileService,
		transactionStorage, customerSource,
		serviceCfg.OriginCityID, serviceCfg.DefaultCouriers, checkoutMetrics,
	)
	handler.RegisterRoutes(e)

	go runner.RunHTTP(ctx, e, serviceCfg.HTTPPort)

	<-ctx.Done()

	var shutdownWg sync.WaitGroup
	shutdownWg.Add(4)

	go func() {
		defer shutdownWg.Done()
		runner.ShutdownHTTP(ctx, e)
		logger.GetLoggerFromCtx(ctx).Info(ctx, "server stopped")
	}()
	go func() {
		defer shutdownWg.Done()
		pool.Close()
		logger.GetLoggerFromCtx(ctx).Info(ctx, "postgres pool stopped")
	}()
	go func() {
		defer shutdownWg.Done()
		if err := rdb.Close(); err != nil {
			logger.GetLoggerFromCtx(ctx).Error(ctx, "error while closing redis client", zap.Error(err))
		}
		logger.GetLoggerFromCtx(ctx).Info(ctx, "redis client stopped")
	}()
	go func() {
		defer shutdownWg.Done()
		if err := paidEventsWriter.Close(); err != nil {
			logger.GetLoggerFromCtx(ctx).Error(ctx, "error while closing kafka writer", zap.Error(err))
		}
		logger.GetLoggerFromCtx(ctx).Info(ctx, "kafka writer stopped")
	}()

	shutdownWg.Wait()
}
