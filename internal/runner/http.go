package runner

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/nezferoz/fashion-park-sub001/pkg/logger"
)

// RunHTTP starts the echo server on addr, logs the beginning and any serve failure
func RunHTTP(ctx context.Context, e *echo.Echo, port int) {
	addr := fmt.Sprintf(":%d", port)
	logger.GetLoggerFromCtx(ctx).Info(ctx, fmt.Sprintf("listening at %s", addr))
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.GetLoggerFromCtx(ctx).Error(ctx, "failed to serve http", zap.Error(err))
	}
}

// ShutdownHTTP stops the echo server with a 10 seconds timeout, logs on error
func ShutdownHTTP(ctx context.Context, e *echo.Echo) {
	cancelCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(cancelCtx); err != nil {
		logger.GetLoggerFromCtx(ctx).Warn(ctx, "failed to shutdown http server", zap.Error(err))
	}
}
