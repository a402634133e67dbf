package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/customerrors"
	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/internal/ports"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// ReconcileResult reports what a notification did to the transaction
type ReconcileResult string

const (
	// ResultApplied means this call won the PENDING -> terminal transition
	ResultApplied ReconcileResult = "APPLIED"
	// ResultAlreadyApplied means the same terminal status was already recorded;
	// the repeat is an idempotent no-op
	ResultAlreadyApplied ReconcileResult = "ALREADY_APPLIED"
	// ResultIgnored means the notification carried no transition (e.g. pending)
	ResultIgnored ReconcileResult = "IGNORED"
	// ResultRejected means the notification was refused (bad signature,
	// stale transition, unknown order)
	ResultRejected ReconcileResult = "REJECTED"
)

// ReconcileService consumes asynchronous payment notifications and applies them
// to persisted transaction state. Per-order serialization comes from the
// storage's conditional PENDING -> terminal update, so two concurrently
// delivered webhooks cannot both win
type ReconcileService struct {
	storage ports.TransactionStorage
	gateway ports.PaymentGateway
	events  ports.EventPublisher
}

// NewReconcileService creates a new ReconcileService. events may be nil, then
// no paid-order event is published
func NewReconcileService(storage ports.TransactionStorage, gateway ports.PaymentGateway, events ports.EventPublisher) *ReconcileService {
	return &ReconcileService{
		storage: storage,
		gateway: gateway,
		events:  events,
	}
}

// mapGatewayStatus is the fixed lookup from gateway statuses to canonical
// outcomes. The empty result means "no transition, stays PENDING"
func mapGatewayStatus(transactionStatus, fraudStatus string) (models.PaymentStatus, bool) {
	switch transactionStatus {
	case "capture":
		// a captured card payment counts only once fraud screening accepts it
		if fraudStatus == "challenge" {
			return "", false
		}
		return models.PaymentStatusSuccess, true
	case "settlement":
		return models.PaymentStatusSuccess, true
	case "deny", "cancel", "failure":
		return models.PaymentStatusFailed, true
	case "expire":
		return models.PaymentStatusExpired, true
	default:
		return "", false
	}
}

// ApplyNotification verifies, maps and applies one webhook delivery.
//
// The gateway delivers at least once, so the whole path is idempotent on
// (order_id, reported_status): a repeat of an applied terminal status is a
// no-op, while a different terminal status for a settled order is an anomaly
// that is logged and rejected, never applied
func (s *ReconcileService) ApplyNotification(ctx context.Context, rawPayload []byte) (ReconcileResult, error) {
	log := logger.GetOrCreateLoggerFromCtx(ctx)

	notification, err := s.gateway.VerifyNotification(rawPayload)
	if err != nil {
		log.Warn(ctx, "dropping notification with bad signature", zap.Error(err))
		return ResultRejected, err
	}

	target, hasTransition := mapGatewayStatus(notification.TransactionStatus, notification.FraudStatus)
	if !hasTransition {
		log.Info(ctx, "notification carries no transition",
			zap.String("order_id", notification.OrderID),
			zap.String("reported_status", notification.TransactionStatus))
		return ResultIgnored, nil
	}

	tx, err := s.storage.GetTransactionByOrderID(ctx, notification.OrderID)
	if err != nil {
		return ResultRejected, fmt.Errorf("couldn't load transaction for notification: %w", err)
	}

	won, err := s.storage.UpdateStatusIfPending(ctx, notification.OrderID, target)
	if err != nil {
		return ResultRejected, fmt.Errorf("couldn't apply status transition: %w", err)
	}

	if !won {
		current, err := s.storage.GetTransactionByOrderID(ctx, notification.OrderID)
		if err != nil {
			return ResultRejected, fmt.Errorf("couldn't re-read transaction after lost race: %w", err)
		}
		if current.PaymentStatus == target {
			log.Info(ctx, "notification already applied",
				zap.String("order_id", notification.OrderID),
				zap.String("status", string(target)))
			return ResultAlreadyApplied, nil
		}
		log.Error(ctx, "stale transition rejected",
			zap.String("order_id", notification.OrderID),
			zap.String("current_status", string(current.PaymentStatus)),
			zap.String("reported_status", string(target)))
		return ResultRejected, customerrors.ErrStaleTransition
	}

	log.Info(ctx, "payment status applied",
		zap.String("order_id", notification.OrderID),
		zap.String("status", string(target)))

	if target == models.PaymentStatusSuccess {
		// side effects fire exactly once, gated by winning the CAS above.
		// If one of them fails after the flip, redelivery reports
		// ALREADY_APPLIED and will not repeat it; the failure is surfaced for
		// operators instead of being retried blindly
		if err := s.storage.DecrementStock(ctx, tx.Lines); err != nil {
			log.Error(ctx, "stock decrement failed after successful payment",
				zap.String("order_id", notification.OrderID), zap.Error(err))
			return ResultApplied, fmt.Errorf("payment applied but stock decrement failed: %w", err)
		}
		if s.events != nil {
			event := models.OrderPaidEvent{
				EventID:     uuid.NewString(),
				OrderID:     tx.OrderID,
				CustomerID:  tx.CustomerID,
				TotalAmount: tx.TotalAmount,
				PaidAt:      time.Now().UTC().Format(time.RFC3339),
			}
			if err := s.events.PublishOrderPaid(ctx, event); err != nil {
				log.Error(ctx, "couldn't publish order paid event",
					zap.String("order_id", notification.OrderID), zap.Error(err))
				return ResultApplied, fmt.Errorf("payment applied but event publish failed: %w", err)
			}
		}
	}

	return ResultApplied, nil
}
