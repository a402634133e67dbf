package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nezferoz/fashion-park-sub001/internal/models"
)

// blockingEventReceiver parks in Consume until the context ends, like a kafka
// reader waiting for messages
type blockingEventReceiver struct{}

func (r *blockingEventReceiver) Consume(ctx context.Context) (models.OrderPaidEvent, string, error) {
	<-ctx.Done()
	return models.OrderPaidEvent{}, "", ctx.Err()
}

func (r *blockingEventReceiver) OnSuccess(context.Context, string) error { return nil }

func (r *blockingEventReceiver) OnFail(context.Context, bool, string) error { return nil }

// streamEventReceiver always has a valid event ready
type streamEventReceiver struct{}

func (r *streamEventReceiver) Consume(context.Context) (models.OrderPaidEvent, string, error) {
	return models.OrderPaidEvent{EventID: "event-1", OrderID: "ORDER-1"}, "msg", nil
}

func (r *streamEventReceiver) OnSuccess(context.Context, string) error { return nil }

func (r *streamEventReceiver) OnFail(context.Context, bool, string) error { return nil }

func TestPaidEventReceiverService_StopAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewPaidEventReceiverService[string](&blockingEventReceiver{},
		func(context.Context, models.OrderPaidEvent) error { return nil })

	loopDone := make(chan struct{})
	go func() {
		_ = svc.StartReceivingEvents(ctx)
		close(loopDone)
	}()

	cancel()
	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop didn't exit after context cancel")
	}

	// the loop is gone; stopping now must still return instead of blocking the
	// shutdown path forever
	stopped := make(chan struct{})
	go func() {
		svc.StopReceivingEvents(context.Background())
		svc.StopReceivingEvents(context.Background())
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("StopReceivingEvents blocked after the loop already exited")
	}
}

func TestPaidEventReceiverService_StopEndsRunningLoop(t *testing.T) {
	svc := NewPaidEventReceiverService[string](&streamEventReceiver{},
		func(context.Context, models.OrderPaidEvent) error { return nil })

	loopDone := make(chan struct{})
	go func() {
		_ = svc.StartReceivingEvents(context.Background())
		close(loopDone)
	}()

	svc.StopReceivingEvents(context.Background())

	select {
	case <-loopDone:
	case <-time.After(2 * time.Second):
		t.Fatal("consume loop didn't exit after stop signal")
	}

	require.NotPanics(t, func() {
		svc.StopReceivingEvents(context.Background())
	})
}
