package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// ProcessEventFunction is the type of function called on each received paid-order event
type ProcessEventFunction func(context.Context, models.OrderPaidEvent) error

// PaidEventReceiverService reads paid-order events continuously, validates and
// processes them
//
// It supports different implementations, so MessageType is generic
type PaidEventReceiverService[MessageType any] struct {
	receiver             ports.PaidEventReceiver[MessageType]
	processEventFunction ProcessEventFunction

	done     chan struct{}
	stopOnce sync.Once
}

// NewPaidEventReceiverService creates a new receiver service with given receiver and process function
func NewPaidEventReceiverService[MessageType any](receiver ports.PaidEventReceiver[MessageType], processEventFunction ProcessEventFunction) *PaidEventReceiverService[MessageType] {
	return &PaidEventReceiverService[MessageType]{
		receiver:             receiver,
		processEventFunction: processEventFunction,
		done:                 make(chan struct{}),
	}
}

// StartReceivingEvents is the main loop function that is meant to be run in background
func (s *PaidEventReceiverService[_]) StartReceivingEvents(ctx context.Context) error {
out:
	for {
		select {
		case <-ctx.Done():
			break out
		case <-s.done:
			break out
		default:
			// step 1: try to consume
			event, msg, err := s.receiver.Consume(ctx)
			if err != nil {
				logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "error while receiving events",
					zap.Error(err))
				break
			}

			// step 2: validate
			if event.EventID == "" || event.OrderID == "" {
				logger.GetOrCreateLoggerFromCtx(ctx).Warn(ctx, "invalid paid-order event",
					zap.String("order_id", event.OrderID))

				// message is incorrect, no retries
				if err = s.receiver.OnFail(ctx, false, msg); err != nil {
					logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "error while committing invalid message failure", zap.Error(err))
				}
				break
			}

			// step 3: process
			if err = s.processEventFunction(ctx, event); err != nil {
				logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "error while processing event",
					zap.String("order_id", event.OrderID), zap.Error(err))

				// retry because of unknown downstream errors
				if err = s.receiver.OnFail(ctx, true, msg); err != nil {
					logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "error while committing valid message failure", zap.Error(err))
				}
				break
			}

			if err = s.receiver.OnSuccess(ctx, msg); err != nil {
				logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "error while committing successful message", zap.Error(err))
			}
		}
	}
	return nil
}

// StopReceivingEvents signals StartReceivingEvents to stop looping. Closing the
// channel keeps the call from blocking when the loop already exited with its
// context, and makes repeated calls safe
func (s *PaidEventReceiverService[_]) StopReceivingEvents(ctx context.Context) {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}
