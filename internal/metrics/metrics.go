// Package metrics exposes parser and code generator statistics as Prometheus
// metrics.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	arx "go.arxlang.dev/pkg"
)

const namespace = "arx"

// Collector records what the compiler did. It implements arx.Observer.
type Collector struct {
	registry *prometheus.Registry

	files        prometheus.Counter
	units        *prometheus.CounterVec
	diagnostics  *prometheus.CounterVec
	parseTime    prometheus.Histogram
	codegenRuns  *prometheus.CounterVec
	codegenTime  prometheus.Histogram
	codegenFails prometheus.Counter
}

// NewCollector registers the metrics on registry. A nil registry gets a fresh
// one.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "files_total",
			Help:      "Number of parsed sources.",
		}),
		units: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "units_total",
			Help:      "Number of parsed top-level units by kind.",
		}, []string{"kind"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "diagnostics_total",
			Help:      "Number of parse errors by kind.",
		}, []string{"kind"}),
		parseTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "duration_seconds",
			Help:      "Time spent parsing one source.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		codegenRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codegen",
			Name:      "runs_total",
			Help:      "Number of code generation runs by status.",
		}, []string{"status"}),
		codegenTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "codegen",
			Name:      "duration_seconds",
			Help:      "Time spent lowering one AST.",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
		}),
		codegenFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codegen",
			Name:      "errors_total",
			Help:      "Number of semantic and code generation errors.",
		}),
	}

	registry.MustRegister(c.files, c.units, c.diagnostics, c.parseTime, c.codegenRuns, c.codegenTime, c.codegenFails)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) ObserveParse(ast *arx.AST, elapsed time.Duration) {
	c.files.Inc()
	c.parseTime.Observe(elapsed.Seconds())

	for _, unit := range ast.Units {
		c.units.WithLabelValues(unitKind(unit)).Inc()
	}

	for _, err := range ast.Errors {
		c.diagnostics.WithLabelValues(err.Kind.String()).Inc()
	}
}

func (c *Collector) ObserveCodegen(errs int, elapsed time.Duration) {
	if errs > 0 {
		c.codegenRuns.WithLabelValues("error").Inc()
		c.codegenFails.Add(float64(errs))
		return
	}

	c.codegenRuns.WithLabelValues("ok").Inc()
	c.codegenTime.Observe(elapsed.Seconds())
}

func unitKind(unit arx.Unit) string {
	switch u := unit.(type) {
	case *arx.Prototype:
		return "extern"
	case *arx.Function:
		if arx.IsAnonymous(u) {
			return "expression"
		}

		if u.Proto.IsOperator() {
			return "operator"
		}

		return "function"
	default:
		return "unknown"
	}
}

// WriteSummary prints every non-zero counter of the registry, one per line.
func (c *Collector) WriteSummary(w io.Writer) error {
	families, err := c.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var lines []string
	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}

		for _, m := range family.GetMetric() {
			v := m.GetCounter().GetValue()
			if v == 0 {
				continue
			}

			name := family.GetName()
			for _, label := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", label.GetName(), label.GetValue())
			}

			lines = append(lines, fmt.Sprintf("%-48s %g", name, v))
		}
	}

	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}
