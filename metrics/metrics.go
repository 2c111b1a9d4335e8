package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the Prometheus instruments for the orchestration core.
// All methods are safe to call on a nil receiver.
type Collector struct {
	queriesTotal  *prometheus.CounterVec
	tokensTotal   *prometheus.CounterVec
	costTotal     prometheus.Counter
	queryDuration prometheus.Histogram
	agentDuration *prometheus.HistogramVec
	agentsPerQry  prometheus.Histogram
	budgetPercent prometheus.Gauge
}

// NewCollector builds a Collector and registers its instruments with reg.
// A nil reg uses the default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentiq",
			Name:      "queries_total",
			Help:      "Queries processed, partitioned by terminal state.",
		}, []string{"status"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentiq",
			Name:      "tokens_total",
			Help:      "Tokens consumed, partitioned by direction.",
		}, []string{"type"}),
		costTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agentiq",
			Name:      "cost_usd_total",
			Help:      "Accumulated query cost in USD.",
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentiq",
			Name:      "query_duration_seconds",
			Help:      "End-to-end query latency.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		agentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentiq",
			Name:      "agent_duration_seconds",
			Help:      "Per-capability task latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"agent"}),
		agentsPerQry: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentiq",
			Name:      "agents_per_query",
			Help:      "Number of planned tasks per query.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		budgetPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agentiq",
			Name:      "daily_budget_usage_percent",
			Help:      "Share of the daily budget consumed, 0 to 100.",
		}),
	}
	reg.MustRegister(
		c.queriesTotal, c.tokensTotal, c.costTotal,
		c.queryDuration, c.agentDuration, c.agentsPerQry, c.budgetPercent,
	)
	return c
}

// ObserveQuery records one finished query.
func (c *Collector) ObserveQuery(status string, dur time.Duration, plannedTasks int) {
	if c == nil {
		return
	}
	c.queriesTotal.WithLabelValues(status).Inc()
	c.queryDuration.Observe(dur.Seconds())
	c.agentsPerQry.Observe(float64(plannedTasks))
}

// ObserveAgent records one capability invocation.
func (c *Collector) ObserveAgent(agent string, dur time.Duration) {
	if c == nil {
		return
	}
	c.agentDuration.WithLabelValues(agent).Observe(dur.Seconds())
}

// AddUsage records token and cost consumption after a task completes.
func (c *Collector) AddUsage(inputTokens, outputTokens int, cost float64) {
	if c == nil {
		return
	}
	c.tokensTotal.WithLabelValues("input").Add(float64(inputTokens))
	c.tokensTotal.WithLabelValues("output").Add(float64(outputTokens))
	c.costTotal.Add(cost)
}

// SetBudgetUsage publishes the current daily budget consumption percentage.
func (c *Collector) SetBudgetUsage(percent float64) {
	if c == nil {
		return
	}
	c.budgetPercent.Set(percent)
}
