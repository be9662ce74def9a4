package backup

import (
	"enchlib/core/storage"
	"enchlib/core/tables"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
	enabled bool
}

// NewFeature creates a new Backup feature. A nil client disables it.
func NewFeature(client storage.Client, cfg storage.Config, store *tables.Store, logger *zap.Logger) *Feature {
	f := &Feature{enabled: client != nil}
	if f.enabled {
		f.service = NewService(client, cfg, store, logger)
		f.handler = NewHandler(f.service)
	}
	return f
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "backup"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return f.enabled
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
