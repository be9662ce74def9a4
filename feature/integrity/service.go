package integrity

import (
	"context"
	"errors"

	"enchlib/core/filestore"
	"enchlib/core/reconcile"
	"enchlib/core/storage"
	"enchlib/core/tables"
	"enchlib/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrNoDatabase is returned by schema checks when the registry is not
	// database backed.
	ErrNoDatabase = errors.New("registry is not database backed")
	// ErrNoStorage is returned by storage checks when no object storage is
	// configured.
	ErrNoStorage = errors.New("object storage is not configured")
)

// Service handles integrity checks.
type Service struct {
	files  *filestore.Store
	engine *reconcile.Engine
	client storage.Client
	bucket string
	region string
	prefix string
	db     *gorm.DB
	table  string
	logger *zap.Logger
}

// Options carries the optional dependencies of the service. A nil Client
// or DB disables the matching check.
type Options struct {
	Client storage.Client
	Bucket string
	Region string
	Prefix string
	DB     *gorm.DB
	Table  string
}

// NewService creates a new integrity service.
func NewService(engine *reconcile.Engine, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		files:  engine.Store().Files(),
		engine: engine,
		client: opts.Client,
		bucket: opts.Bucket,
		region: opts.Region,
		prefix: opts.Prefix,
		db:     opts.DB,
		table:  opts.Table,
		logger: logger,
	}
}

// CheckFiles returns the table files missing from disk.
func (s *Service) CheckFiles() ([]string, error) {
	return checks.CheckFiles(s.files)
}

// FixFiles creates the missing table files under the store's write lock and
// reloads the tables.
func (s *Service) FixFiles(missing []string) error {
	_, err := s.engine.Store().Mutate(func(files *filestore.Store, _ *tables.Snapshot) error {
		return checks.FixFiles(files, s.logger, missing)
	})
	return err
}

// CheckRegistry compares the tables with the registry.
func (s *Service) CheckRegistry(ctx context.Context) (*reconcile.ValidationReport, error) {
	return checks.CheckRegistry(ctx, s.engine)
}

// FixRegistry fills the rows missing for registry ids.
func (s *Service) FixRegistry(ctx context.Context) (*reconcile.Report, error) {
	return checks.FixRegistry(ctx, s.engine, s.logger)
}

// CheckSchema verifies the registry table columns.
func (s *Service) CheckSchema() (*checks.ServerReport, error) {
	if s.db == nil {
		return nil, ErrNoDatabase
	}
	return checks.CheckServerIntegrity(s.db, s.table)
}

// FixSchema creates the registry table or adds its missing columns.
func (s *Service) FixSchema() error {
	if s.db == nil {
		return ErrNoDatabase
	}
	return checks.FixServerIntegrity(s.db, s.table, s.logger)
}

// CheckStorage verifies the backup bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrNoStorage
	}
	return checks.CheckStorage(ctx, s.client, s.bucket, s.prefix)
}

// FixStorage creates the backup bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return ErrNoStorage
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

// Report runs every check and collects the results by name. Checks whose
// dependency is absent report status "skipped".
func (s *Service) Report(ctx context.Context) map[string]any {
	report := make(map[string]any)

	if missing, err := s.CheckFiles(); err != nil {
		report["files"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["files"] = map[string]any{"status": "ok", "missing": missing}
	}

	if validation, err := s.CheckRegistry(ctx); err != nil {
		report["registry"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["registry"] = validation
	}

	report["schema"] = resultOrStatus(s.CheckSchema())
	report["storage"] = resultOrStatus(s.CheckStorage(ctx))
	return report
}

func resultOrStatus[T any](result T, err error) any {
	switch {
	case errors.Is(err, ErrNoDatabase), errors.Is(err, ErrNoStorage):
		return map[string]any{"status": "skipped", "reason": err.Error()}
	case err != nil:
		return map[string]any{"status": "error", "error": err.Error()}
	}
	return result
}
