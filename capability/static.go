package capability

import (
	"context"
	"fmt"

	"github.com/agentiq/agentiq/core"
)

// StaticCapability returns canned results keyed by task text. It serves
// tests and examples that need deterministic output without a provider.
type StaticCapability struct {
	responses map[string]any
	fallback  any
}

var _ core.Capability = (*StaticCapability)(nil)

// NewStaticCapability creates an empty StaticCapability that echoes tasks
// it has no canned result for.
func NewStaticCapability() *StaticCapability {
	return &StaticCapability{responses: map[string]any{}}
}

// AddResponse registers a canned result for a task description.
func (s *StaticCapability) AddResponse(task string, result any) *StaticCapability {
	s.responses[task] = result
	return s
}

// WithFallback sets the result for unregistered tasks.
func (s *StaticCapability) WithFallback(result any) *StaticCapability {
	s.fallback = result
	return s
}

// Execute implements core.Capability.
func (s *StaticCapability) Execute(ctx context.Context, task string, _ map[int]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result, ok := s.responses[task]; ok {
		return result, nil
	}
	if s.fallback != nil {
		return s.fallback, nil
	}
	return fmt.Sprintf("Completed: %s", task), nil
}
