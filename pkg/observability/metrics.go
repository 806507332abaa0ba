package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/aretw0/toolhouse/pkg/dice"
	"github.com/aretw0/toolhouse/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// SidesOther labels every die outside the standard set.
const SidesOther = "other"

var standardSides = map[int]string{
	4: "4", 6: "6", 8: "8", 10: "10", 12: "12", 20: "20", 100: "100",
}

// sidesLabel keeps the sides label bounded to the standard dice.
func sidesLabel(sides int) string {
	if l, ok := standardSides[sides]; ok {
		return l
	}
	return SidesOther
}

// Metrics holds the toolhouse collectors.
type Metrics struct {
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	diceRolled   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toolCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhouse_tool_calls_total",
				Help: "Total number of tool calls by outcome",
			},
			[]string{"tool", "outcome"},
		),
		toolDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolhouse_tool_duration_seconds",
				Help:    "Duration of tool executions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
		diceRolled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolhouse_dice_rolled_total",
				Help: "Total number of individual dice rolled, by number of sides (non-standard dice are \"other\")",
			},
			[]string{"sides"},
		),
	}
	reg.MustRegister(m.toolCalls, m.toolDuration, m.diceRolled)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors
// already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the metrics gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Middleware records call counts and durations for every tool execution.
func (m *Metrics) Middleware() registry.Middleware {
	return func(name string, next registry.ToolFunction) registry.ToolFunction {
		return func(ctx context.Context, args map[string]any) (any, error) {
			start := time.Now()
			out, err := next(ctx, args)
			m.toolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

			outcome := OutcomeOK
			if err != nil {
				outcome = OutcomeError
			}
			m.toolCalls.WithLabelValues(name, outcome).Inc()
			return out, err
		}
	}
}

// ObserveSession counts every die thrown in the session.
func (m *Metrics) ObserveSession(s dice.Session) {
	n := s.Expression.Count * len(s.Trials)
	m.diceRolled.WithLabelValues(sidesLabel(s.Expression.Sides)).Add(float64(n))
}
