package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector

	// Must not panic.
	c.ObserveQuery("complete", time.Second, 3)
	c.ObserveAgent("web_search", time.Millisecond)
	c.AddUsage(100, 200, 0.01)
	c.SetBudgetUsage(42)
}

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveQuery("complete", 250*time.Millisecond, 3)
	c.ObserveQuery("failed", 50*time.Millisecond, 1)
	c.AddUsage(100, 200, 0.01)
	c.AddUsage(50, 50, 0.002)
	c.SetBudgetUsage(12.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.queriesTotal.WithLabelValues("complete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queriesTotal.WithLabelValues("failed")))
	assert.Equal(t, 150.0, testutil.ToFloat64(c.tokensTotal.WithLabelValues("input")))
	assert.Equal(t, 250.0, testutil.ToFloat64(c.tokensTotal.WithLabelValues("output")))
	assert.InDelta(t, 0.012, testutil.ToFloat64(c.costTotal), 1e-9)
	assert.Equal(t, 12.5, testutil.ToFloat64(c.budgetPercent))
}
