package metrics

import (
	"time"

	"enchlib/core/reconcile"
	"enchlib/core/tables"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metric descriptors for the table store and the
// reconcile engine. It implements tables.Observer and reconcile.Observer.
type Metrics struct {
	registry *prometheus.Registry

	loadsTotal         *prometheus.CounterVec
	parseWarnings      *prometheus.CounterVec
	tableRows          *prometheus.GaugeVec
	enchantments       *prometheus.GaugeVec
	lastLoadTimestamp  prometheus.Gauge
	reconcileRuns      *prometheus.CounterVec
	reconcileRows      *prometheus.CounterVec
	validationFindings *prometheus.GaugeVec
}

var (
	_ tables.Observer    = (*Metrics)(nil)
	_ reconcile.Observer = (*Metrics)(nil)
)

// New creates the metrics on a private registry, alongside the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enchlib_table_loads_total",
			Help: "Table loads by result.",
		}, []string{"result"}),
		parseWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enchlib_parse_warnings_total",
			Help: "Malformed table lines skipped during load.",
		}, []string{"table"}),
		tableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "enchlib_table_rows",
			Help: "Rows per table in the current snapshot.",
		}, []string{"table"}),
		enchantments: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "enchlib_enchantments",
			Help: "Enchantments in the availability table by state.",
		}, []string{"state"}),
		lastLoadTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "enchlib_last_load_timestamp_seconds",
			Help: "Unix time of the last successful load.",
		}),
		reconcileRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enchlib_reconcile_runs_total",
			Help: "Reconcile runs by result.",
		}, []string{"result"}),
		reconcileRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "enchlib_reconcile_rows_total",
			Help: "Rows written by reconcile runs.",
		}, []string{"action"}),
		validationFindings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "enchlib_validation_findings",
			Help: "Findings of the last validation by kind.",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loadsTotal,
		m.parseWarnings,
		m.tableRows,
		m.enchantments,
		m.lastLoadTimestamp,
		m.reconcileRuns,
		m.reconcileRows,
		m.validationFindings,
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLoad implements tables.Observer.
func (m *Metrics) ObserveLoad(snap *tables.Snapshot, err error) {
	if err != nil {
		m.loadsTotal.WithLabelValues("error").Inc()
		return
	}
	m.loadsTotal.WithLabelValues("ok").Inc()

	st := snap.Stats()
	for kind, rows := range st.Rows {
		m.tableRows.WithLabelValues(string(kind)).Set(float64(rows))
	}
	m.enchantments.WithLabelValues("enabled").Set(float64(st.Enabled))
	m.enchantments.WithLabelValues("disabled").Set(float64(st.Disabled))

	loaded := snap.LoadedAt
	if loaded.IsZero() {
		loaded = time.Now()
	}
	m.lastLoadTimestamp.Set(float64(loaded.Unix()))
}

// ObserveParseWarning implements tables.Observer.
func (m *Metrics) ObserveParseWarning(w tables.ParseWarning) {
	m.parseWarnings.WithLabelValues(string(w.Kind)).Inc()
}

// ObserveReconcile implements reconcile.Observer.
func (m *Metrics) ObserveReconcile(report *reconcile.Report, err error) {
	if err != nil {
		m.reconcileRuns.WithLabelValues("error").Inc()
	} else if report != nil && report.DryRun {
		m.reconcileRuns.WithLabelValues("dry_run").Inc()
	} else {
		m.reconcileRuns.WithLabelValues("ok").Inc()
	}
	if report == nil {
		return
	}
	m.reconcileRows.WithLabelValues("insert").Add(float64(report.Inserted))
	m.reconcileRows.WithLabelValues("remove").Add(float64(report.Removed))
}

// ObserveValidation implements reconcile.Observer.
func (m *Metrics) ObserveValidation(report *reconcile.ValidationReport) {
	m.validationFindings.WithLabelValues("missing").Set(float64(len(report.MissingInConfig)))
	m.validationFindings.WithLabelValues("extra").Set(float64(len(report.ExtraInConfig)))
	m.validationFindings.WithLabelValues("asymmetric").Set(float64(len(report.AsymmetricPairs)))
}

// Handler serves the metrics in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
