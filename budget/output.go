package budget

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OutputEstimates holds the static per-agent output token table used during
// pre-flight checks. Agents answer with characteristically different sizes
// (a planner emits compact JSON, synthesis is comprehensive prose), so a
// per-agent guess beats a single constant. Unknown agent names fall back to
// Fallback.
type OutputEstimates struct {
	// Agents maps agent name to its base output token estimate.
	Agents map[string]int `yaml:"agents"`

	// Fallback is used for agent names absent from Agents.
	Fallback int `yaml:"fallback"`

	// ComplexityThreshold is the task description length (in characters)
	// above which the base estimate is scaled by ComplexityFactor.
	ComplexityThreshold int `yaml:"complexity_threshold"`

	// ComplexityFactor scales the base estimate for long task descriptions.
	ComplexityFactor float64 `yaml:"complexity_factor"`
}

// DefaultOutputEstimates returns the built-in table.
func DefaultOutputEstimates() OutputEstimates {
	return OutputEstimates{
		Agents: map[string]int{
			"planner":        300, // planning output is structured JSON
			"web_search":     500, // search results can be verbose
			"data_analysis":  400,
			"synthesis":      800, // final synthesis is comprehensive
			"code_execution": 600,
		},
		Fallback:            500,
		ComplexityThreshold: 200,
		ComplexityFactor:    1.5,
	}
}

// LoadOutputEstimates reads a YAML table from path. Fields omitted in the
// file keep their defaults, so partial overrides are valid.
func LoadOutputEstimates(path string) (OutputEstimates, error) {
	est := DefaultOutputEstimates()
	data, err := os.ReadFile(path)
	if err != nil {
		return est, fmt.Errorf("read output estimates: %w", err)
	}
	if err := yaml.Unmarshal(data, &est); err != nil {
		return DefaultOutputEstimates(), fmt.Errorf("parse output estimates: %w", err)
	}
	if est.Fallback <= 0 {
		est.Fallback = DefaultOutputEstimates().Fallback
	}
	if est.ComplexityFactor <= 0 {
		est.ComplexityFactor = DefaultOutputEstimates().ComplexityFactor
	}
	return est, nil
}

// Estimate returns the output token estimate for agentName performing task.
// Long task descriptions scale the base estimate by ComplexityFactor.
func (e OutputEstimates) Estimate(agentName, task string) int {
	base, ok := e.Agents[agentName]
	if !ok {
		base = e.Fallback
	}
	if len(task) > e.ComplexityThreshold {
		base = int(float64(base) * e.ComplexityFactor)
	}
	return base
}
