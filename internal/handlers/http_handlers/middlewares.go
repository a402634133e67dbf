package http_handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
	"github.com/nezferoz/fashion-park-sub001/pkg/metrics"
)

// LoggingMiddleware places a logger and a request id into each request context
func LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, err := logger.New(c.Request().Context())
			if err != nil {
				ctx = c.Request().Context()
				logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "error creating logger for request",
					zap.Error(err))
			}
			ctx = context.WithValue(ctx, logger.KeyForRequestID, uuid.NewString())
			c.SetRequest(c.Request().WithContext(ctx))

			if err := next(c); err != nil {
				logger.GetOrCreateLoggerFromCtx(ctx).Error(ctx, "response with error", zap.Error(err))
				return err
			}
			return nil
		}
	}
}

// MetricsMiddleware counts requests and observes latency per route
func MetricsMiddleware(m *metrics.CheckoutMetrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			handler := c.Path()
			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequests.WithLabelValues(handler, status).Inc()
			m.HTTPLatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
			return err
		}
	}
}
