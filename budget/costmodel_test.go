package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCostModelEstimate(t *testing.T) {
	// $3 per million input tokens, $15 per million output tokens.
	m := NewCostModel(3, 15)

	assert.InDelta(t, 0.0, m.Estimate(0, 0), 1e-12)
	assert.InDelta(t, 3.0, m.Estimate(1_000_000, 0), 1e-9)
	assert.InDelta(t, 15.0, m.Estimate(0, 1_000_000), 1e-9)
	assert.InDelta(t, 18.0, m.Estimate(1_000_000, 1_000_000), 1e-9)
}

func TestCostModelLinearity(t *testing.T) {
	m := NewCostModel(5, 75)

	single := m.Estimate(1000, 300)
	double := m.Estimate(2000, 600)
	assert.InDelta(t, 2*single, double, 1e-12)
}

func TestCostModelMonotonic(t *testing.T) {
	m := NewCostModel(5, 75)

	assert.Less(t, m.Estimate(100, 100), m.Estimate(101, 100))
	assert.Less(t, m.Estimate(100, 100), m.Estimate(100, 101))
}

func TestCostModelZeroRates(t *testing.T) {
	m := NewCostModel(0, 0)
	assert.Equal(t, 0.0, m.Estimate(1_000_000, 1_000_000))
}

func TestCostModelNegativeTokensPanic(t *testing.T) {
	m := NewCostModel(5, 75)

	assert.Panics(t, func() { m.Estimate(-1, 0) })
	assert.Panics(t, func() { m.Estimate(0, -1) })
}
