package enchantments

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"enchlib/core/tables"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	app := fiber.New()
	NewHandler(newTestService(t)).RegisterRoutes(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)

	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestHandleList(t *testing.T) {
	app := setupTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/enchantments?enabled=true", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var list []tables.Detail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 4)
}

func TestHandleGet(t *testing.T) {
	app := setupTestApp(t)

	status, body := doJSON(t, app, "GET", "/enchantments/minecraft:sharpness", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "minecraft:sharpness", body["id"])
	assert.Equal(t, 5.0, body["max_level"])

	status, _ = doJSON(t, app, "GET", "/enchantments/minecraft%3Amending", "")
	assert.Equal(t, 200, status)

	status, body = doJSON(t, app, "GET", "/enchantments/ghost", "")
	assert.Equal(t, 404, status)
	assert.Contains(t, body["error"], "not found")
}

func TestHandleMutations(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"Disable", "PUT", "/enchantments/sharpness/enabled", `{"enabled": false}`, 200},
		{"EnabledMissingBody", "PUT", "/enchantments/sharpness/enabled", `{}`, 400},
		{"SetLevel", "PUT", "/enchantments/sharpness/max-level", `{"level": 7}`, 200},
		{"SetLevelZero", "PUT", "/enchantments/sharpness/max-level", `{"level": 0}`, 400},
		{"ClearLevel", "DELETE", "/enchantments/sharpness/max-level", "", 200},
		{"SetRarity", "PUT", "/enchantments/sharpness/rarity", `{"rarity": "epic"}`, 200},
		{"EmptyRarity", "PUT", "/enchantments/sharpness/rarity", `{"rarity": ""}`, 400},
		{"SetCategories", "PUT", "/enchantments/sharpness/categories", `{"values": ["Damage"]}`, 200},
		{"UnknownList", "PUT", "/enchantments/sharpness/colour", `{"values": ["red"]}`, 404},
		{"Remove", "DELETE", "/enchantments/mymod:frog", "", 204},
		{"RemoveUnknown", "DELETE", "/enchantments/mymod:frog", "", 404},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status)
		})
	}

	status, body := doJSON(t, app, "GET", "/enchantments/sharpness", "")
	require.Equal(t, 200, status)
	assert.Equal(t, false, body["enabled"])
	assert.Equal(t, "epic", body["rarity"])
	assert.Equal(t, []any{"Damage"}, body["categories"])
}

func TestHandleMutations_RejectsLineBreakingInput(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"NewlineInID", "PUT", "/enchantments/m:x%3Dfalse%0Am:sharpness/enabled", `{"enabled": true}`},
		{"EqualsInID", "PUT", "/enchantments/m:a%3Db/enabled", `{"enabled": true}`},
		{"CommentID", "PUT", "/enchantments/%23m:a/rarity", `{"rarity": "rare"}`},
		{"NewlineInRarity", "PUT", "/enchantments/sharpness/rarity", `{"rarity": "rare\nm:evil=legendary"}`},
		{"CommaInListItem", "PUT", "/enchantments/sharpness/categories", `{"values": ["Damage,Bow"]}`},
		{"NewlineInListItem", "PUT", "/enchantments/sharpness/compatibility", `{"values": ["a\nm:evil=true"]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, app, tt.method, tt.path, tt.body)
			assert.Equal(t, 400, status)
			assert.NotEmpty(t, body["error"])
		})
	}

	status, body := doJSON(t, app, "GET", "/enchantments/sharpness", "")
	require.Equal(t, 200, status)
	assert.NotEqual(t, "legendary", body["rarity"])
	assert.Empty(t, body["categories"])

	status, _ = doJSON(t, app, "GET", "/enchantments/m:evil", "")
	assert.Equal(t, 404, status)
}

func TestHandleReconcileAndValidate(t *testing.T) {
	app := setupTestApp(t)

	status, _ := doJSON(t, app, "PUT", "/enchantments/mymod:stray/enabled", `{"enabled": true}`)
	require.Equal(t, 200, status)

	status, body := doJSON(t, app, "GET", "/enchantments/validate", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, []any{"mymod:stray"}, body["extra_in_config"])

	status, body = doJSON(t, app, "POST", "/enchantments/reconcile?prune=true&dry_run=true", "")
	assert.Equal(t, 200, status)
	plan := body["plan"].(map[string]any)
	assert.Equal(t, 1.0, plan["summary"].(map[string]any)["pruned_ids"])

	status, body = doJSON(t, app, "POST", "/enchantments/reconcile?prune=true&confirm=true", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, 1.0, body["report"].(map[string]any)["removed_count"])

	status, body = doJSON(t, app, "GET", "/enchantments/stats", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, 4.0, body["total"])

	status, body = doJSON(t, app, "GET", "/enchantments/registry", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, 4.0, body["total"])

	status, body = doJSON(t, app, "POST", "/enchantments/reload", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, "reloaded", body["status"])
}

func TestLoader(t *testing.T) {
	f := &Feature{}
	assert.Equal(t, "enchantments", f.Name())
	assert.True(t, f.IsEnabled())

	svc := newTestService(t)
	feature := NewFeature(svc.engine, "minecraft", nil)
	assert.NoError(t, feature.Load(fiber.New()))
}
