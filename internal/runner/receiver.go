package runner

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/service"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// RunPaidEventReceiver loops the paid-order consumer until the context ends
func RunPaidEventReceiver(ctx context.Context, receiver *service.PaidEventReceiverService[kafka.Message]) {
	logger.GetLoggerFromCtx(ctx).Info(ctx, "starting receiving paid-order events")
	if err := receiver.StartReceivingEvents(ctx); err != nil {
		logger.GetLoggerFromCtx(ctx).Error(ctx, "failed to receive events", zap.Error(err))
	}
}

// ShutdownPaidEventReceiver stops the consumer loop
func ShutdownPaidEventReceiver(ctx context.Context, receiver *service.PaidEventReceiverService[kafka.Message]) {
	cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	receiver.StopReceivingEvents(cancelCtx)
}
