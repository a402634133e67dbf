package mailer

import (
	"context"

	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/internal/models"
	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// LogMailSender is the development implementation of ports.MailSender: it logs
// the confirmation instead of talking to a mail provider. The production
// provider is a deployment concern behind the same port
type LogMailSender struct{}

func NewLogMailSender() *LogMailSender {
	return &LogMailSender{}
}

func (m *LogMailSender) SendOrderConfirmation(ctx context.Context, email string, event models.OrderPaidEvent) error {
	logger.GetOrCreateLoggerFromCtx(ctx).Info(ctx, "order confirmation dispatched",
		zap.String("email", email),
		zap.String("order_id", event.OrderID),
		zap.Int64("total_amount", event.TotalAmount))
	return nil
}
