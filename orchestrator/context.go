package orchestrator

import (
	"sync"

	"github.com/agentiq/agentiq/core"
)

// ExecutionContext is the mutable per-query state shared by task executions.
// It is safe for concurrent use so the parallel execution mode can record
// results and costs from multiple workers.
type ExecutionContext struct {
	mu sync.Mutex

	queryID         string
	query           string
	accumulatedCost float64
	agentCosts      map[string]float64
	results         map[int]any
}

// NewExecutionContext creates the state container for one query.
func NewExecutionContext(queryID, query string) *ExecutionContext {
	return &ExecutionContext{
		queryID:    queryID,
		query:      query,
		agentCosts: map[string]float64{},
		results:    map[int]any{},
	}
}

// QueryID returns the query identifier.
func (c *ExecutionContext) QueryID() string { return c.queryID }

// Query returns the original query text.
func (c *ExecutionContext) Query() string { return c.query }

// RecordCost adds cost to the accumulated total and records it as the agent's
// latest task cost. Per-agent entries are last-write-wins; only the total
// accumulates.
func (c *ExecutionContext) RecordCost(agentName string, cost float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accumulatedCost += cost
	c.agentCosts[agentName] = cost
}

// AccumulatedCost returns the total recorded cost so far.
func (c *ExecutionContext) AccumulatedCost() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accumulatedCost
}

// SetResult stores a completed task's result under its plan index.
func (c *ExecutionContext) SetResult(index int, result any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[index] = result
}

// Completed reports whether the task at index has a recorded result.
func (c *ExecutionContext) Completed(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.results[index]
	return ok
}

// DependencyContext returns the results of the completed tasks among deps.
// Indices without a recorded result are omitted from the map, never present
// with a nil placeholder.
func (c *ExecutionContext) DependencyContext(deps []int) map[int]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	dep := make(map[int]any, len(deps))
	for _, idx := range deps {
		if r, ok := c.results[idx]; ok {
			dep[idx] = r
		}
	}
	return dep
}

// Results returns a copy of all recorded task results keyed by plan index.
func (c *ExecutionContext) Results() map[int]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int]any, len(c.results))
	for k, v := range c.results {
		out[k] = v
	}
	return out
}

// CostBreakdown snapshots the per-agent and total spend for the query.
func (c *ExecutionContext) CostBreakdown() core.CostBreakdown {
	c.mu.Lock()
	defer c.mu.Unlock()
	agents := make(map[string]float64, len(c.agentCosts))
	for k, v := range c.agentCosts {
		agents[k] = v
	}
	return core.CostBreakdown{
		TotalCost:  c.accumulatedCost,
		AgentCosts: agents,
		Currency:   "USD",
	}
}
