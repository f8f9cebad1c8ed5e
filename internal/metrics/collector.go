package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cantine-planner/internal/antigaspi"
	"cantine-planner/internal/llm"
	"cantine-planner/internal/planner"
)

// Collector exposes planning activity as Prometheus metrics on its own registry.
type Collector struct {
	registry *prometheus.Registry

	allocations    *prometheus.CounterVec
	allocationTime prometheus.Histogram
	slotsFilled    *prometheus.GaugeVec
	emptySlots     *prometheus.CounterVec
	valorization   *prometheus.GaugeVec
	wasteKg        *prometheus.GaugeVec
	llmTokens      *prometheus.CounterVec
	llmLatency     *prometheus.HistogramVec
}

// NewCollector creates and registers the planner metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cantine_allocations_total",
				Help: "Auto-fill runs by outcome",
			},
			[]string{"outcome"},
		),
		allocationTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "cantine_allocation_duration_seconds",
				Help:    "Time spent allocating a week",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		slotsFilled: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cantine_slots_filled",
				Help: "Filled slots of the last auto-fill per week",
			},
			[]string{"week"},
		),
		emptySlots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cantine_empty_slots_total",
				Help: "Slots left empty by auto-fill, by reason",
			},
			[]string{"reason"},
		),
		valorization: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cantine_valorization_score_percent",
				Help: "Share of the week's waste kinds covered by suggested recipes",
			},
			[]string{"week"},
		),
		wasteKg: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cantine_expected_waste_kg",
				Help: "Expected kitchen waste per portion for the week",
			},
			[]string{"week"},
		),
		llmTokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cantine_llm_tokens_total",
				Help: "Tokens consumed by LLM agents",
			},
			[]string{"agent", "kind"},
		),
		llmLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cantine_llm_latency_seconds",
				Help:    "LLM agent latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"agent"},
		),
	}

	c.registry.MustRegister(
		c.allocations,
		c.allocationTime,
		c.slotsFilled,
		c.emptySlots,
		c.valorization,
		c.wasteKg,
		c.llmTokens,
		c.llmLatency,
	)
	return c
}

// ObserveAllocation implements planner.Observer.
func (c *Collector) ObserveAllocation(weekID string, report planner.Report, elapsed time.Duration) {
	outcome := "complete"
	if len(report.EmptySlots) > 0 {
		outcome = "partial"
	}
	c.allocations.WithLabelValues(outcome).Inc()
	c.allocationTime.Observe(elapsed.Seconds())
	c.slotsFilled.WithLabelValues(weekID).Set(float64(len(report.Picks)))
	for _, e := range report.EmptySlots {
		c.emptySlots.WithLabelValues(string(e.Reason)).Inc()
	}
}

// ObserveSummary records the anti-waste figures of a week.
func (c *Collector) ObserveSummary(s antigaspi.Summary) {
	c.wasteKg.WithLabelValues(s.WeekID).Set(s.TotalWasteKg)
	if s.HasScore {
		c.valorization.WithLabelValues(s.WeekID).Set(float64(s.Score))
	} else {
		c.valorization.DeleteLabelValues(s.WeekID)
	}
}

// ObserveAgent records token usage and latency of an LLM call.
func (c *Collector) ObserveAgent(meta llm.AgentMeta) {
	c.llmTokens.WithLabelValues(meta.AgentName, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.llmTokens.WithLabelValues(meta.AgentName, "completion").Add(float64(meta.Usage.CompletionTokens))
	if meta.Latency > 0 {
		c.llmLatency.WithLabelValues(meta.AgentName).Observe(meta.Latency.Seconds())
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
