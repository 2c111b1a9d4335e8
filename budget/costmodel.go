package budget

import "fmt"

// CostModel maps token counts to a monetary cost given per-token rates.
// It is a pure value; construct once and share freely.
type CostModel struct {
	inputRate  float64 // USD per input token
	outputRate float64 // USD per output token
}

// NewCostModel builds a CostModel from per-million-token rates (the unit
// model pricing is published in). The division happens once here; Estimate
// works on per-token rates.
func NewCostModel(inputPerMillion, outputPerMillion float64) CostModel {
	return CostModel{
		inputRate:  inputPerMillion / 1_000_000,
		outputRate: outputPerMillion / 1_000_000,
	}
}

// Estimate returns the cost of the given token counts. Linear in both
// arguments, no rounding beyond float64 precision.
//
// Negative token counts are a contract violation, not a recoverable error:
// callers derive counts from lengths and table lookups, both non-negative.
func (m CostModel) Estimate(inputTokens, outputTokens int) float64 {
	if inputTokens < 0 || outputTokens < 0 {
		panic(fmt.Sprintf("budget: negative token count (input=%d, output=%d)", inputTokens, outputTokens))
	}
	return float64(inputTokens)*m.inputRate + float64(outputTokens)*m.outputRate
}
