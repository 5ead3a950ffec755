package bootstrap

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/identity"
	"github.com/safesight/safesight-backend/internal/notify"
	"github.com/safesight/safesight-backend/internal/stream"
	"github.com/safesight/safesight-backend/internal/violation"
	"github.com/safesight/safesight-backend/internal/worker"
)

func ProvideDetectorClient(cfg *Config, logger *slog.Logger) *detection.Client {
	return detection.NewClient(detection.ClientConfig{
		DetectorURL: cfg.DetectorURL,
		Timeout:     cfg.SidecarTimeout,
	}, logger)
}

func ProvideEncoder(cfg *Config, logger *slog.Logger) *identity.Encoder {
	return identity.NewEncoder(identity.EncoderConfig{
		EncoderURL: cfg.EncoderURL,
		Timeout:    cfg.SidecarTimeout,
	}, logger)
}

func ProvideGallery(cfg *Config, logger *slog.Logger) *identity.Gallery {
	return identity.NewGallery(cfg.FaceMatchThreshold, logger)
}

func ProvideResolver(encoder *identity.Encoder, gallery *identity.Gallery, logger *slog.Logger) *identity.Resolver {
	return identity.NewResolver(encoder, gallery, logger)
}

func ProvidePool(lc fx.Lifecycle, cfg *Config, logger *slog.Logger) *detection.Pool {
	pool := detection.NewPool(cfg.InferenceWorkers, cfg.InferenceQueueSize, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool
}

func ProvidePipeline(client *detection.Client, resolver *identity.Resolver, logger *slog.Logger) *detection.Pipeline {
	return detection.NewPipeline(client, resolver, logger)
}

func ProvideSessionManager(logger *slog.Logger) *stream.Manager {
	return stream.NewManager(logger)
}

func ProvideHub(lc fx.Lifecycle, redisClient *redis.Client, logger *slog.Logger) *notify.Hub {
	hub := notify.NewHub(redisClient, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return hub.Close()
		},
	})
	return hub
}

func ProvideNotifier(hub *notify.Hub, logger *slog.Logger) *notify.Notifier {
	return notify.NewNotifier(hub, logger)
}

func ProvideReporter(store *violation.Store, workers *worker.Store, notifier *notify.Notifier, logger *slog.Logger) stream.Reporter {
	return violation.NewReporter(store, workers, notifier, logger)
}

// LoadGallery seeds the in-memory face index from the worker store before
// the server starts accepting detection sessions.
func LoadGallery(lc fx.Lifecycle, workers *worker.Store, gallery *identity.Gallery, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			entries, err := workers.GalleryEntries(ctx)
			if err != nil {
				return err
			}
			loaded := gallery.RetrainAll(entries)
			logger.Info("face gallery loaded", "workers", loaded)
			return nil
		},
	})
}

var SafetyModule = fx.Options(
	fx.Provide(
		ProvideDetectorClient,
		ProvideEncoder,
		ProvideGallery,
		ProvideResolver,
		ProvidePool,
		ProvidePipeline,
		ProvideSessionManager,
		ProvideHub,
		ProvideNotifier,
		ProvideReporter,
	),
	fx.Invoke(LoadGallery),
)
