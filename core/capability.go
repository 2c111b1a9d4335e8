package core

import "context"

// Capability is the uniform contract for the agents that perform the actual
// work of one task (web search, code execution, data analysis, ...). The
// orchestrator invokes a capability at most once per task; retry policy, if
// any, belongs to the capability itself.
//
// Implementations must:
//   - Respect context cancellation (the per-query deadline flows through ctx)
//   - Return a serializable result (its serialized size feeds cost recording)
//   - Treat depContext as read-only
type Capability interface {
	// Execute performs one task. depContext maps completed dependency task
	// indices to their results; indices whose results are unavailable are
	// absent from the map.
	Execute(ctx context.Context, task string, depContext map[int]any) (any, error)
}

// CapabilityFunc adapts a plain function to the Capability interface.
type CapabilityFunc func(ctx context.Context, task string, depContext map[int]any) (any, error)

// Execute implements Capability.
func (f CapabilityFunc) Execute(ctx context.Context, task string, depContext map[int]any) (any, error) {
	return f(ctx, task, depContext)
}

// Planner turns a natural-language query into an ordered task list. It is an
// opaque collaborator; how the plan text is produced is out of the core's
// scope.
type Planner interface {
	Plan(ctx context.Context, query string) ([]Task, error)
}

// Synthesizer combines the per-task results into the final answer.
type Synthesizer interface {
	Synthesize(ctx context.Context, query string, results map[int]any) (string, error)
}
