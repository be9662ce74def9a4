package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"enchlib/core/reconcile"
	"enchlib/core/tables"

	"github.com/gofiber/fiber/v2"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value returns the current value of the series name{label=labelValue}.
func value(t *testing.T, m *Metrics, name, labelValue string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if !hasLabelValue(metric, labelValue) {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			return metric.GetGauge().GetValue()
		}
	}
	return 0
}

func hasLabelValue(metric *dto.Metric, v string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetValue() == v {
			return true
		}
	}
	return false
}

func TestObserveLoad(t *testing.T) {
	m := New()

	m.ObserveLoad(tables.NewSnapshot(), nil)
	m.ObserveLoad(nil, errors.New("boom"))

	assert.Equal(t, 1.0, value(t, m, "enchlib_table_loads_total", "ok"))
	assert.Equal(t, 1.0, value(t, m, "enchlib_table_loads_total", "error"))
	assert.Equal(t, 0.0, value(t, m, "enchlib_table_rows", "rarity"))
}

func TestObserveParseWarning(t *testing.T) {
	m := New()
	m.ObserveParseWarning(tables.ParseWarning{Kind: tables.KindMaxLevel})
	m.ObserveParseWarning(tables.ParseWarning{Kind: tables.KindMaxLevel})
	assert.Equal(t, 2.0, value(t, m, "enchlib_parse_warnings_total", "max_level"))
}

func TestObserveReconcileAndValidation(t *testing.T) {
	m := New()
	m.ObserveReconcile(&reconcile.Report{Inserted: 12, Removed: 2}, nil)
	m.ObserveReconcile(&reconcile.Report{DryRun: true}, nil)
	m.ObserveReconcile(nil, errors.New("registry down"))

	assert.Equal(t, 1.0, value(t, m, "enchlib_reconcile_runs_total", "ok"))
	assert.Equal(t, 1.0, value(t, m, "enchlib_reconcile_runs_total", "dry_run"))
	assert.Equal(t, 1.0, value(t, m, "enchlib_reconcile_runs_total", "error"))
	assert.Equal(t, 12.0, value(t, m, "enchlib_reconcile_rows_total", "insert"))

	m.ObserveValidation(&reconcile.ValidationReport{MissingInConfig: []tables.ID{"m:a", "m:b"}})
	assert.Equal(t, 2.0, value(t, m, "enchlib_validation_findings", "missing"))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveParseWarning(tables.ParseWarning{Kind: tables.KindRarity})

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `enchlib_parse_warnings_total{table="rarity"} 1`)
}
