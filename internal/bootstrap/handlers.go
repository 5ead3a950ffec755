package bootstrap

import (
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/identity"
	"github.com/safesight/safesight-backend/internal/notify"
	"github.com/safesight/safesight-backend/internal/stream"
	"github.com/safesight/safesight-backend/internal/violation"
	"github.com/safesight/safesight-backend/internal/worker"
)

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

func ProvideWorkerHandler(store *worker.Store, encoder *identity.Encoder, gallery *identity.Gallery, logger *slog.Logger) *worker.Handler {
	return worker.NewHandler(store, encoder, gallery, logger.With("handler", "worker"))
}

func ProvideViolationHandler(store *violation.Store, notifier *notify.Notifier, logger *slog.Logger) *violation.Handler {
	return violation.NewHandler(store, notifier, logger.With("handler", "violation"))
}

func ProvideStreamHandler(pipeline *detection.Pipeline, pool *detection.Pool, manager *stream.Manager, reporter stream.Reporter, logger *slog.Logger) *stream.Handler {
	return stream.NewHandler(pipeline, pool, manager, reporter, logger.With("handler", "stream"))
}

func ProvideNotifyHandler(hub *notify.Hub, logger *slog.Logger) *notify.Handler {
	return notify.NewHandler(hub, logger.With("handler", "notify"))
}

type HandlerParams struct {
	fx.In

	WorkerHandler    *worker.Handler
	ViolationHandler *violation.Handler
	StreamHandler    *stream.Handler
	NotifyHandler    *notify.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/api/v1")

	params.WorkerHandler.RegisterRoutes(api.Group("/workers"))
	params.ViolationHandler.RegisterRoutes(api)

	params.StreamHandler.Register(e)
	params.NotifyHandler.Register(e)
}

var HandlersModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideWorkerHandler,
		ProvideViolationHandler,
		ProvideStreamHandler,
		ProvideNotifyHandler,
	),
	fx.Invoke(RegisterRoutes),
)
