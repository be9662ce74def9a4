package backup

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"enchlib/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, m *mocks.Client) *fiber.App {
	store, _ := newTestStore(t, map[string]string{"AviableEnch.config": "a:b=true\n"})
	feature := NewFeature(m, testConfig, store, zap.NewNop())
	require.True(t, feature.IsEnabled())
	assert.Equal(t, "backup", feature.Name())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app
}

func TestNewFeature_Disabled(t *testing.T) {
	feature := NewFeature(nil, testConfig, nil, zap.NewNop())
	assert.False(t, feature.IsEnabled())
}

func TestHandleList(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "enchlib", mock.Anything).Return(listing(
		minio.ObjectInfo{Key: "enchlib/backups/20260101T000000.000Z/AviableEnch.config"},
	))
	app := setupTestApp(t, m)

	resp, err := app.Test(httptest.NewRequest("GET", "/backups", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var list []Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	assert.Equal(t, "20260101T000000.000Z", list[0].Name)
}

func TestHandlePush(t *testing.T) {
	m := new(mocks.Client)
	m.On("BucketExists", mock.Anything, "enchlib").Return(true, nil)
	m.On("PutObject", mock.Anything, "enchlib", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil)
	app := setupTestApp(t, m)

	resp, err := app.Test(httptest.NewRequest("POST", "/backups", nil))
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)
}

func TestHandlePull_NotFound(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "enchlib", mock.Anything).Return(listing())
	app := setupTestApp(t, m)

	resp, err := app.Test(httptest.NewRequest("POST", "/backups/restore", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandlePrune_BadKeep(t *testing.T) {
	app := setupTestApp(t, new(mocks.Client))

	resp, err := app.Test(httptest.NewRequest("DELETE", "/backups?keep=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandleDelete(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "enchlib", mock.Anything).Return(listing(
		minio.ObjectInfo{Key: "enchlib/backups/20260101T000000.000Z/AviableEnch.config"},
	))
	m.On("RemoveObjects", mock.Anything, "enchlib", mock.Anything, mock.Anything).Return(nil)
	app := setupTestApp(t, m)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/backups/20260101T000000.000Z", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}
