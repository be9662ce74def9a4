package integrity

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"enchlib/core/filestore"
	"enchlib/core/reconcile"
	"enchlib/core/registry"
	"enchlib/core/storage/mocks"
	"enchlib/core/tables"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func newTestEngine(t *testing.T) *reconcile.Engine {
	t.Helper()
	store := tables.NewStore(filestore.New(afero.NewMemMapFs(), "/cfg", nil), nil)
	_, err := store.Load()
	require.NoError(t, err)
	return reconcile.NewEngine(store, registry.StaticIDs("minecraft:sharpness", "minecraft:mending"), nil, nil)
}

func TestService_Files(t *testing.T) {
	svc := NewService(newTestEngine(t), Options{}, zap.NewNop())

	missing, err := svc.CheckFiles()
	require.NoError(t, err)
	assert.Len(t, missing, len(tables.Definitions))

	require.NoError(t, svc.FixFiles(missing))

	missing, err = svc.CheckFiles()
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestService_FixFilesKeepsConcurrentRows(t *testing.T) {
	engine := newTestEngine(t)
	svc := NewService(engine, Options{}, zap.NewNop())

	missing, err := svc.CheckFiles()
	require.NoError(t, err)
	require.Len(t, missing, len(tables.Definitions))

	require.NoError(t, engine.Store().SetEnabled("minecraft:sharpness", false))
	require.NoError(t, svc.FixFiles(missing))

	snap := engine.Store().Snapshot()
	assert.True(t, snap.Has(tables.KindAvailability, "minecraft:sharpness"))
	assert.False(t, snap.IsEnabled("minecraft:sharpness"))

	missing, err = svc.CheckFiles()
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestService_Registry(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newTestEngine(t), Options{}, zap.NewNop())

	report, err := svc.CheckRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tables.ID{"minecraft:mending", "minecraft:sharpness"}, report.MissingInConfig)

	fixed, err := svc.FixRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, fixed.AddedCount)

	report, err = svc.CheckRegistry(ctx)
	require.NoError(t, err)
	assert.True(t, report.Clean())
}

func TestService_Schema(t *testing.T) {
	t.Run("No Database", func(t *testing.T) {
		svc := NewService(newTestEngine(t), Options{}, zap.NewNop())
		_, err := svc.CheckSchema()
		assert.ErrorIs(t, err, ErrNoDatabase)
	})

	t.Run("MySQL", func(t *testing.T) {
		db, mock := setupMockDB(t)
		rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("id", "varchar(64)", "NO", "PRI", nil, "").
			AddRow("max_level", "int(11)", "NO", "", nil, "")
		mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `enchantments`")).WillReturnRows(rows)

		svc := NewService(newTestEngine(t), Options{DB: db, Table: "enchantments"}, zap.NewNop())
		report, err := svc.CheckSchema()
		require.NoError(t, err)
		assert.True(t, report.Matched)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestService_Storage(t *testing.T) {
	ctx := context.Background()

	t.Run("No Storage", func(t *testing.T) {
		svc := NewService(newTestEngine(t), Options{}, zap.NewNop())
		_, err := svc.CheckStorage(ctx)
		assert.ErrorIs(t, err, ErrNoStorage)
		assert.ErrorIs(t, svc.FixStorage(ctx), ErrNoStorage)
	})

	t.Run("Fix", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "enchlib").Return(false, nil)
		m.On("MakeBucket", mock.Anything, "enchlib", mock.Anything).Return(nil)

		svc := NewService(newTestEngine(t), Options{Client: m, Bucket: "enchlib", Prefix: "enchlib/backups"}, zap.NewNop())
		report, err := svc.CheckStorage(ctx)
		require.NoError(t, err)
		assert.False(t, report.Exists)

		require.NoError(t, svc.FixStorage(ctx))
		m.AssertCalled(t, "MakeBucket", mock.Anything, "enchlib", mock.Anything)
	})
}

func TestService_Report(t *testing.T) {
	m := new(mocks.Client)
	m.On("BucketExists", mock.Anything, "enchlib").Return(false, errors.New("connection refused"))

	svc := NewService(newTestEngine(t), Options{Client: m, Bucket: "enchlib"}, zap.NewNop())
	report := svc.Report(context.Background())

	require.Contains(t, report, "files")
	assert.IsType(t, &reconcile.ValidationReport{}, report["registry"])
	assert.Equal(t, map[string]any{"status": "skipped", "reason": ErrNoDatabase.Error()}, report["schema"])
	assert.Equal(t, "error", report["storage"].(map[string]any)["status"])

}
