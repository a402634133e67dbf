package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	segkafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/adapters/catalog"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/mailer"
	"github.com/nezferoz/fashion-park-sub001/internal/adapters/receiver"
	"github.com/nezferoz/fashion-park-sub001/internal/config"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/runner"
	"github.com/nezferoz/fashion-park-sub001/internal/service"
	"github.com/nezferoz/fashion-park-sub001/pkg/kafka"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
	"github.com/nezferoz/fashion-park-sub001/pkg/postgres"
)

// The worker turns paid-order events into confirmation e-mails. Events are
// delivered at least once, so each event id is claimed in redis before any
// mail goes out
func main() {
	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	ctx, _ = logger.New(ctx)

	cfg, err := config.TryRead()
	if err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to load config", zap.Error(err))
	}

	pool, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to connect to postgres", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err = rdb.Ping(ctx).Err(); err != nil {
		logger.GetLoggerFromCtx(ctx).Fatal(ctx, "failed to connect to redis", zap.Error(err))
	}

	reader := kafka.NewReader(cfg.Kafka, cfg.CheckoutService.PaidEventsTopic, cfg.NotificationWorker.KafkaGroupID)
	eventReceiver := receiver.NewKafkaReceiver[models.OrderPaidEvent](reader)

	customers := catalog.NewCustomerStoragePostgres(pool)
	mail := mailer.NewLogMailSender()
	dedupTTL := time.Duration(cfg.NotificationWorker.DedupTTLHours) * time.Hour

	process := func(ctx context.Context, event models.OrderPaidEvent) error {
		// claim the event id first so a redelivery cannot send a second mail
		claimed, err := rdb.SetNX(ctx, "paid-event:"+event.EventID, 1, dedupTTL).Result()
		if err != nil {
			return fmt.Errorf("couldn't claim event id: %w", err)
		}
		if !claimed {
			logger.GetOrCreateLoggerFromCtx(ctx).Info(ctx, "duplicate paid-order event skipped",
				zap.String("event_id", event.EventID), zap.String("order_id", event.OrderID))
			return nil
		}

		customer, err := customers.GetCustomer(ctx, event.CustomerID)
		if err != nil {
			return fmt.Errorf("couldn't read customer for confirmation: %w", err)
		}
		return mail.SendOrderConfirmation(ctx, customer.Email, event)
	}

	receiverService := service.NewPaidEventReceiverService[segkafka.Message](eventReceiver, process)

	go runner.RunPaidEventReceiver(ctx, receiverService)

	<-ctx.Done()

	var shutdownWg sync.WaitGroup
	shutdownWg.Add(3)

	go func() {
		defer shutdownWg.Done()
		runner.ShutdownPaidEventReceiver(ctx, receiverService)
		logger.GetLoggerFromCtx(ctx).Info(ctx, "receiver stopped")
	}()
	go func() {
		defer shutdownWg.Done()
		if err := reader.Close(); err != nil {
			logger.GetLoggerFromCtx(ctx).Error(ctx, "error while closing kafka reader", zap.Error(err))
		}
		logger.GetLoggerFromCtx(ctx).Info(ctx, "kafka reader stopped")
	}()
	go func() {
		defer shutdownWg.Done()
		pool.Close()
		logger.GetLoggerFromCtx(ctx).Info(ctx, "postgres pool stopped")
	}()

	shutdownWg.Wait()
}
