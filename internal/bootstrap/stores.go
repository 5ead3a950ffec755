package bootstrap

import (
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/safesight/safesight-backend/internal/violation"
	"github.com/safesight/safesight-backend/internal/worker"
)

func ProvideWorkerStore(db *gorm.DB, qdrantClient *qdrant.Client) *worker.Store {
	return worker.NewStore(db, qdrantClient)
}

func ProvideViolationStore(db *gorm.DB) *violation.Store {
	return violation.NewStore(db)
}

func RunMigrations(workerStore *worker.Store, violationStore *violation.Store) error {
	if err := workerStore.Migrate(); err != nil {
		return err
	}
	return violationStore.Migrate()
}

var StoresModule = fx.Options(
	fx.Provide(
		ProvideWorkerStore,
		ProvideViolationStore,
	),
	fx.Invoke(RunMigrations),
)
