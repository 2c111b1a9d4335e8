package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentiq/agentiq/budget"
	"github.com/agentiq/agentiq/config"
	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/ledger"
)

type stubPlanner struct {
	tasks []core.Task
	err   error
}

func (p stubPlanner) Plan(context.Context, string) ([]core.Task, error) {
	return p.tasks, p.err
}

type stubSynthesizer struct {
	answer string
	err    error
}

func (s stubSynthesizer) Synthesize(context.Context, string, map[int]any) (string, error) {
	return s.answer, s.err
}

// countingCapability returns a fixed result and counts invocations.
type countingCapability struct {
	calls  atomic.Int32
	result any
	err    error
}

func (c *countingCapability) Execute(context.Context, string, map[int]any) (any, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return c.result, nil
}

func threeTaskPlan() []core.Task {
	return []core.Task{
		{Description: "search for recent LLM cost benchmarks", AgentName: "web_search"},
		{Description: "analyze the collected benchmark data", AgentName: "data_analysis", DependsOn: []int{0}},
		{Description: "summarize key findings", AgentName: "data_analysis", DependsOn: []int{1}},
	}
}

func newTestOrchestrator(t *testing.T, store ledger.Store, daily, perQuery float64, planner core.Planner, caps map[string]core.Capability, optFns ...func(o *Options)) *Orchestrator {
	t.Helper()
	guard := budget.NewGuard(store, daily, perQuery)
	exec := NewTaskExecutor(budget.NewCostModel(5, 75), guard, store)
	return New(planner, stubSynthesizer{answer: "final synthesized answer"}, exec, caps, optFns...)
}

func TestExecuteQueryEndToEnd(t *testing.T) {
	store := ledger.NewInMemoryStore()
	search := &countingCapability{result: "search results about LLM costs"}
	analysis := &countingCapability{result: "analysis of the data"}
	caps := map[string]core.Capability{"web_search": search, "data_analysis": analysis}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: threeTaskPlan()}, caps)
	outcome := o.ExecuteQuery(context.Background(), "what do LLM API calls cost today?")

	require.False(t, outcome.Failed(), "unexpected failure: %v", outcome.Err)
	assert.Equal(t, "final synthesized answer", outcome.Answer)
	assert.Len(t, outcome.Plan, 3)
	assert.Len(t, outcome.Results, 3)
	assert.Equal(t, int32(1), search.calls.Load())
	assert.Equal(t, int32(2), analysis.calls.Load())
	assert.Positive(t, outcome.CostBreakdown.TotalCost)
	assert.Equal(t, "USD", outcome.CostBreakdown.Currency)

	// Three tasks plus synthesis leave four usage records whose costs sum to
	// the outcome's total.
	recs := store.Records(ledger.Today())
	require.Len(t, recs, 4)
	var sum float64
	for _, r := range recs {
		sum += r.Cost
	}
	assert.InDelta(t, outcome.CostBreakdown.TotalCost, sum, 1e-12)

	usage, err := store.Read(context.Background(), ledger.Today())
	require.NoError(t, err)
	assert.InDelta(t, sum, usage.TotalCost, 1e-12)
	assert.Equal(t, int64(4), usage.QueriesProcessed)
}

func TestExecuteQueryPerQueryBudgetRejection(t *testing.T) {
	store := ledger.NewInMemoryStore()
	search := &countingCapability{result: "never seen"}
	caps := map[string]core.Capability{"web_search": search}
	plan := []core.Task{{Description: strings.Repeat("analyze this corpus ", 50), AgentName: "web_search"}}

	// A $0.001 per-query cap is below any realistic task estimate.
	o := newTestOrchestrator(t, store, 100, 0.001, stubPlanner{tasks: plan}, caps)
	outcome := o.ExecuteQuery(context.Background(), "expensive question")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrBudgetExceeded)
	var be *core.BudgetExceededError
	require.ErrorAs(t, outcome.Err, &be)
	assert.Equal(t, "per_query_budget", be.Reason)
	assert.Equal(t, int32(0), search.calls.Load(), "capability must not run after a budget rejection")
	assert.Empty(t, outcome.Answer)
}

func TestExecuteQueryDailyBudgetRejection(t *testing.T) {
	store := ledger.NewInMemoryStore()
	// Leave $0.000001 of daily headroom so any estimate exceeds it.
	daily := 100.0
	require.NoError(t, store.Increment(context.Background(), ledger.Today(), daily-0.000001, 1000))

	search := &countingCapability{result: "never seen"}
	caps := map[string]core.Capability{"web_search": search}
	plan := []core.Task{{Description: "look something up", AgentName: "web_search"}}

	o := newTestOrchestrator(t, store, daily, 5, stubPlanner{tasks: plan}, caps)
	outcome := o.ExecuteQuery(context.Background(), "any question")

	require.True(t, outcome.Failed())
	var be *core.BudgetExceededError
	require.ErrorAs(t, outcome.Err, &be)
	assert.Equal(t, "daily_budget", be.Reason)
	assert.Equal(t, int32(0), search.calls.Load())
}

func TestExecuteQueryPlanningFailure(t *testing.T) {
	store := ledger.NewInMemoryStore()
	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{err: errors.New("model refused")}, nil)

	outcome := o.ExecuteQuery(context.Background(), "some question")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrPlanningFailed)
	assert.NotEmpty(t, outcome.ErrorDescription)
}

func TestExecuteQueryTooManyTasks(t *testing.T) {
	store := ledger.NewInMemoryStore()
	var tasks []core.Task
	for i := 0; i < 11; i++ {
		tasks = append(tasks, core.Task{Description: fmt.Sprintf("task %d", i), AgentName: "web_search"})
	}
	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: tasks}, nil)

	outcome := o.ExecuteQuery(context.Background(), "huge question")

	require.True(t, outcome.Failed())
	var tm *core.TooManyTasksError
	require.ErrorAs(t, outcome.Err, &tm)
	assert.Equal(t, 11, tm.Planned)
	assert.Equal(t, 10, tm.Max)
}

func TestExecuteQueryAgentFailure(t *testing.T) {
	store := ledger.NewInMemoryStore()
	boom := &countingCapability{err: errors.New("connection refused")}
	caps := map[string]core.Capability{"web_search": boom}
	plan := []core.Task{{Description: "search", AgentName: "web_search"}}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps)
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrAgentExecutionFailed)
	var ae *core.AgentExecutionError
	require.ErrorAs(t, outcome.Err, &ae)
	assert.Equal(t, "web_search", ae.AgentName)

	// No retry: exactly one invocation.
	assert.Equal(t, int32(1), boom.calls.Load())
}

func TestExecuteQueryUnknownAgent(t *testing.T) {
	store := ledger.NewInMemoryStore()
	plan := []core.Task{{Description: "do the thing", AgentName: "quantum_forecaster"}}
	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, map[string]core.Capability{})

	outcome := o.ExecuteQuery(context.Background(), "q")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrAgentExecutionFailed)
	assert.Contains(t, outcome.ErrorDescription, "quantum_forecaster")
}

func TestExecuteQueryLenientOmitsUnsatisfiedDependency(t *testing.T) {
	store := ledger.NewInMemoryStore()

	var seenDeps map[int]any
	inspect := core.CapabilityFunc(func(_ context.Context, _ string, dep map[int]any) (any, error) {
		seenDeps = dep
		return "ok", nil
	})
	caps := map[string]core.Capability{"data_analysis": inspect}
	// depends_on names task 5, which does not exist.
	plan := []core.Task{{Description: "analyze", AgentName: "data_analysis", DependsOn: []int{5}}}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps)
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.False(t, outcome.Failed(), "unexpected failure: %v", outcome.Err)
	_, present := seenDeps[5]
	assert.False(t, present, "unsatisfied dependency must be omitted, not nil-filled")
	assert.Empty(t, seenDeps)
}

func TestExecuteQueryStrictRejectsOutOfRangeDependency(t *testing.T) {
	store := ledger.NewInMemoryStore()
	plan := []core.Task{{Description: "analyze", AgentName: "data_analysis", DependsOn: []int{5}}}
	caps := map[string]core.Capability{"data_analysis": &countingCapability{result: "x"}}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps, func(o *Options) {
		o.DependencyMode = config.DependencyStrict
	})
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrInvalidPlan)
}

func TestExecuteQueryStrictRejectsCycle(t *testing.T) {
	store := ledger.NewInMemoryStore()
	plan := []core.Task{
		{Description: "a", AgentName: "data_analysis", DependsOn: []int{1}},
		{Description: "b", AgentName: "data_analysis", DependsOn: []int{0}},
	}
	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, nil, func(o *Options) {
		o.DependencyMode = config.DependencyStrict
		o.ExecutionMode = config.ExecutionParallel
	})
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrInvalidPlan)
}

func TestExecuteQueryTimeout(t *testing.T) {
	store := ledger.NewInMemoryStore()
	slow := core.CapabilityFunc(func(ctx context.Context, _ string, _ map[int]any) (any, error) {
		select {
		case <-time.After(5 * time.Second):
			return "too late", nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	caps := map[string]core.Capability{"web_search": slow}
	plan := []core.Task{{Description: "search", AgentName: "web_search"}}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps, func(o *Options) {
		o.Timeout = 50 * time.Millisecond
	})
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.True(t, outcome.Failed())
	assert.ErrorIs(t, outcome.Err, core.ErrTimeout)
	var te *core.TimeoutError
	require.ErrorAs(t, outcome.Err, &te)
	assert.Equal(t, outcome.QueryID, te.QueryID)
}

func TestExecuteQueryNoUsageRollbackOnLaterFailure(t *testing.T) {
	store := ledger.NewInMemoryStore()
	good := &countingCapability{result: "fine"}
	bad := &countingCapability{err: errors.New("boom")}
	caps := map[string]core.Capability{"web_search": good, "data_analysis": bad}
	plan := []core.Task{
		{Description: "search", AgentName: "web_search"},
		{Description: "analyze", AgentName: "data_analysis", DependsOn: []int{0}},
	}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps)
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.True(t, outcome.Failed())
	// The first task's usage stands even though the query failed.
	usage, err := store.Read(context.Background(), ledger.Today())
	require.NoError(t, err)
	assert.Positive(t, usage.TotalCost)
	assert.Equal(t, outcome.CostBreakdown.TotalCost, usage.TotalCost)
}

func TestExecuteQueryParallelRespectsDependencies(t *testing.T) {
	store := ledger.NewInMemoryStore()

	var order []int
	var mu = make(chan struct{}, 1)
	mu <- struct{}{}
	record := func(i int) {
		<-mu
		order = append(order, i)
		mu <- struct{}{}
	}

	caps := map[string]core.Capability{
		"web_search": core.CapabilityFunc(func(_ context.Context, task string, _ map[int]any) (any, error) {
			time.Sleep(10 * time.Millisecond)
			record(0)
			return "searched: " + task, nil
		}),
		"data_analysis": core.CapabilityFunc(func(_ context.Context, task string, dep map[int]any) (any, error) {
			if _, ok := dep[0]; !ok {
				return nil, errors.New("dependency result missing")
			}
			record(1)
			return "analyzed", nil
		}),
	}
	plan := []core.Task{
		{Description: "search", AgentName: "web_search"},
		{Description: "analyze", AgentName: "data_analysis", DependsOn: []int{0}},
	}

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps, func(o *Options) {
		o.ExecutionMode = config.ExecutionParallel
		o.MaxConcurrentTasks = 4
	})
	outcome := o.ExecuteQuery(context.Background(), "q")

	require.False(t, outcome.Failed(), "unexpected failure: %v", outcome.Err)
	assert.Equal(t, []int{0, 1}, order)
}

func TestExecuteQueryPanicBecomesFailure(t *testing.T) {
	store := ledger.NewInMemoryStore()
	caps := map[string]core.Capability{
		"web_search": core.CapabilityFunc(func(context.Context, string, map[int]any) (any, error) {
			panic("capability bug")
		}),
	}
	plan := []core.Task{{Description: "search", AgentName: "web_search"}}
	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: plan}, caps)

	var outcome core.QueryOutcome
	assert.NotPanics(t, func() {
		outcome = o.ExecuteQuery(context.Background(), "q")
	})
	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.ErrorDescription, "internal fault")
}

func TestDailyBudgetStatus(t *testing.T) {
	store := ledger.NewInMemoryStore()
	require.NoError(t, store.Increment(context.Background(), ledger.Today(), 25, 5000))

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{}, nil)
	status, err := o.DailyBudgetStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 25.0, status.TotalCost)
	assert.Equal(t, int64(5000), status.TotalTokens)
	assert.Equal(t, 100.0, status.DailyBudget)
	assert.InDelta(t, 25.0, status.BudgetUsagePercent, 1e-9)
	assert.InDelta(t, 75.0, status.RemainingBudget, 1e-9)
}

func TestDailyBudgetStatusPercentCappedAt100(t *testing.T) {
	store := ledger.NewInMemoryStore()
	require.NoError(t, store.Increment(context.Background(), ledger.Today(), 250, 50000))

	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{}, nil)
	status, err := o.DailyBudgetStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 100.0, status.BudgetUsagePercent)
	assert.Negative(t, status.RemainingBudget)
}

func TestExecuteQueryEmptyPlanSynthesizesDirectly(t *testing.T) {
	store := ledger.NewInMemoryStore()
	o := newTestOrchestrator(t, store, 100, 5, stubPlanner{tasks: nil}, nil)

	outcome := o.ExecuteQuery(context.Background(), "trivial question")

	require.False(t, outcome.Failed(), "unexpected failure: %v", outcome.Err)
	assert.Equal(t, "final synthesized answer", outcome.Answer)
	assert.Empty(t, outcome.Results)
}
