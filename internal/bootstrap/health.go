package bootstrap

import (
	"github.com/labstack/echo/v4"
	"github.com/qdrant/go-client/qdrant"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/health"
	"github.com/safesight/safesight-backend/internal/identity"
	"github.com/safesight/safesight-backend/internal/notify"
	"github.com/safesight/safesight-backend/internal/stream"
	"github.com/safesight/safesight-backend/internal/violation"
)

const version = "1.0.0"

func ProvideHealthHandler(
	db *gorm.DB,
	redisClient *redis.Client,
	qdrantClient *qdrant.Client,
	detector *detection.Client,
	encoder *identity.Encoder,
	pool *detection.Pool,
	sessions *stream.Manager,
	gallery *identity.Gallery,
	hub *notify.Hub,
	violations *violation.Store,
) *health.Handler {
	return health.NewHandler(
		db,
		redisClient,
		qdrantClient,
		detector,
		encoder,
		pool,
		sessions,
		gallery,
		hub,
		violations,
		version,
	)
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
