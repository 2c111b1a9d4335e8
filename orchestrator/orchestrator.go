package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/agentiq/agentiq/config"
	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/logging"
	"github.com/agentiq/agentiq/metrics"
)

// State identifies a phase of the query lifecycle.
type State string

// Query lifecycle states. FAILED is reachable from every other state.
const (
	StatePlanning     State = "PLANNING"
	StateExecuting    State = "EXECUTING"
	StateSynthesizing State = "SYNTHESIZING"
	StateComplete     State = "COMPLETE"
	StateFailed       State = "FAILED"
)

// Options configures optional Orchestrator behavior.
type Options struct {
	// MaxTasksPerQuery bounds the plan size. Defaults to 10.
	MaxTasksPerQuery int

	// Timeout is the end-to-end deadline for one query. Defaults to 30s.
	Timeout time.Duration

	// DependencyMode selects lenient (silently omit unsatisfiable
	// dependencies) or strict (validate the graph up front) handling.
	DependencyMode config.DependencyMode

	// ExecutionMode selects sequential list-order execution or parallel
	// execution of dependency-ready tasks.
	ExecutionMode config.ExecutionMode

	// MaxConcurrentTasks bounds parallel mode workers. Defaults to 4.
	MaxConcurrentTasks int

	// Logger receives state transitions and failures. Defaults to a discard
	// logger.
	Logger *logging.AgentIQLogger

	// Metrics receives query observations. Nil disables them.
	Metrics *metrics.Collector
}

// Orchestrator drives queries through the planning, execution, and synthesis
// phases. It is safe for concurrent use; all per-query state lives in an
// ExecutionContext created per call.
type Orchestrator struct {
	planner      core.Planner
	synthesizer  core.Synthesizer
	capabilities map[string]core.Capability
	executor     *TaskExecutor

	maxTasks   int
	timeout    time.Duration
	depMode    config.DependencyMode
	execMode   config.ExecutionMode
	maxWorkers int
	logger     *logging.AgentIQLogger
	metrics    *metrics.Collector
}

// New creates an Orchestrator. capabilities maps agent names, as they appear
// in plans, to their implementations.
func New(planner core.Planner, synthesizer core.Synthesizer, executor *TaskExecutor, capabilities map[string]core.Capability, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxTasksPerQuery:   10,
		Timeout:            30 * time.Second,
		DependencyMode:     config.DependencyLenient,
		ExecutionMode:      config.ExecutionSequential,
		MaxConcurrentTasks: 4,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelError, Output: io.Discard})
	}
	if opts.MaxConcurrentTasks <= 0 {
		opts.MaxConcurrentTasks = 4
	}
	caps := make(map[string]core.Capability, len(capabilities))
	for name, c := range capabilities {
		caps[name] = c
	}
	return &Orchestrator{
		planner:      planner,
		synthesizer:  synthesizer,
		capabilities: caps,
		executor:     executor,
		maxTasks:     opts.MaxTasksPerQuery,
		timeout:      opts.Timeout,
		depMode:      opts.DependencyMode,
		execMode:     opts.ExecutionMode,
		maxWorkers:   opts.MaxConcurrentTasks,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
	}
}

// RegisterCapability adds or replaces the capability serving agent name.
// Registration is not synchronized with in-flight queries; register before
// serving traffic.
func (o *Orchestrator) RegisterCapability(name string, capability core.Capability) {
	o.capabilities[name] = capability
}

// ExecuteQuery runs one query to completion and returns its outcome. It
// never panics past this boundary and never returns an error directly;
// failures are reported inside the outcome.
func (o *Orchestrator) ExecuteQuery(ctx context.Context, query string) (outcome core.QueryOutcome) {
	queryID := core.NewID()
	logger := o.logger.WithQuery(queryID)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Query execution panicked", "panic", r)
			outcome = o.fail(outcome, start, fmt.Errorf("internal fault: %v", r))
		}
	}()

	outcome = core.QueryOutcome{QueryID: queryID, Results: map[int]any{}}
	execCtx := NewExecutionContext(queryID, query)

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	// PLANNING
	logger.Info("State transition", "state", StatePlanning)
	tasks, err := o.planner.Plan(ctx, query)
	if err != nil {
		return o.fail(outcome, start, &core.PlanningError{Query: truncate(query, 100), Cause: err})
	}
	plan := core.NewPlan(tasks)
	outcome.Plan = plan
	if len(plan) > o.maxTasks {
		return o.fail(outcome, start, &core.TooManyTasksError{Planned: len(plan), Max: o.maxTasks})
	}
	if o.depMode == config.DependencyStrict {
		if err := ValidatePlan(plan, o.execMode == config.ExecutionSequential); err != nil {
			return o.fail(outcome, start, err)
		}
	}

	// EXECUTING
	logger.Info("State transition", "state", StateExecuting, "tasks", len(plan))
	if o.execMode == config.ExecutionParallel {
		err = o.executeParallel(ctx, execCtx, plan)
	} else {
		err = o.executeSequential(ctx, execCtx, plan)
	}
	if err != nil {
		outcome.Results = execCtx.Results()
		outcome.CostBreakdown = execCtx.CostBreakdown()
		return o.fail(outcome, start, o.asTimeout(ctx, queryID, start, err))
	}

	// SYNTHESIZING
	logger.Info("State transition", "state", StateSynthesizing)
	answer, err := o.executor.RunSynthesis(ctx, execCtx, o.synthesizer)
	if err != nil {
		outcome.Results = execCtx.Results()
		outcome.CostBreakdown = execCtx.CostBreakdown()
		return o.fail(outcome, start, o.asTimeout(ctx, queryID, start, err))
	}

	// COMPLETE
	outcome.Answer = answer
	outcome.Results = execCtx.Results()
	outcome.CostBreakdown = execCtx.CostBreakdown()
	outcome.Elapsed = time.Since(start)
	logger.Info("State transition", "state", StateComplete,
		"elapsed", outcome.Elapsed, "total_cost", outcome.CostBreakdown.TotalCost)
	o.metrics.ObserveQuery("complete", outcome.Elapsed, len(plan))
	return outcome
}

// DailyBudgetStatus reports today's spend against the configured daily cap.
func (o *Orchestrator) DailyBudgetStatus(ctx context.Context) (core.BudgetStatus, error) {
	return o.executor.BudgetStatus(ctx)
}

// executeSequential runs tasks in plan list order. Dependencies pointing at
// tasks that have not completed yet are silently omitted from the dependency
// context; strict mode has already rejected such plans.
func (o *Orchestrator) executeSequential(ctx context.Context, execCtx *ExecutionContext, plan core.Plan) error {
	for _, task := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		capability, ok := o.capabilities[task.AgentName]
		if !ok {
			return &core.AgentExecutionError{
				AgentName: task.AgentName,
				Task:      task.Description,
				Cause:     fmt.Errorf("no capability registered for agent %q", task.AgentName),
			}
		}
		if _, err := o.executor.Run(ctx, execCtx, task, capability); err != nil {
			return err
		}
	}
	return nil
}

// executeParallel runs dependency-ready tasks concurrently in waves, at most
// maxWorkers at a time. The first failure aborts the query after the current
// wave drains.
func (o *Orchestrator) executeParallel(ctx context.Context, execCtx *ExecutionContext, plan core.Plan) error {
	started := make(map[int]bool, len(plan))
	remaining := len(plan)

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		ready := readyTasks(plan, started, execCtx)
		if len(ready) == 0 {
			// Every unstarted task waits on an incomplete dependency. With
			// no tasks in flight this cannot resolve.
			return &core.InvalidPlanError{
				TaskIndex: firstUnstarted(plan, started),
				Detail:    "unresolvable dependencies, no task is ready to run",
			}
		}

		// Resolve capabilities up front so a missing one fails the wave
		// before any worker starts.
		waveCaps := make([]core.Capability, len(ready))
		for i, task := range ready {
			capability, ok := o.capabilities[task.AgentName]
			if !ok {
				return &core.AgentExecutionError{
					AgentName: task.AgentName,
					Task:      task.Description,
					Cause:     fmt.Errorf("no capability registered for agent %q", task.AgentName),
				}
			}
			waveCaps[i] = capability
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			firstErr error
		)
		setErr := func(err error) {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
		}
		sem := make(chan struct{}, o.maxWorkers)
		for i, task := range ready {
			started[task.Index] = true
			remaining--

			wg.Add(1)
			sem <- struct{}{}
			go func(task core.Task, capability core.Capability) {
				defer wg.Done()
				defer func() { <-sem }()
				defer func() {
					if r := recover(); r != nil {
						setErr(&core.AgentExecutionError{
							AgentName: task.AgentName,
							Task:      task.Description,
							Cause:     fmt.Errorf("internal fault: %v", r),
						})
					}
				}()
				if _, err := o.executor.Run(ctx, execCtx, task, capability); err != nil {
					setErr(err)
				}
			}(task, waveCaps[i])
		}
		wg.Wait()
		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}

// fail finalizes a failed outcome with the typed error and logs it.
func (o *Orchestrator) fail(outcome core.QueryOutcome, start time.Time, err error) core.QueryOutcome {
	outcome.Err = err
	outcome.ErrorDescription = err.Error()
	outcome.Elapsed = time.Since(start)
	o.logger.WithQuery(outcome.QueryID).Error("State transition", "state", StateFailed, "error", err)
	o.metrics.ObserveQuery("failed", outcome.Elapsed, len(outcome.Plan))
	return outcome
}

// asTimeout converts deadline-driven failures into TimeoutError so callers
// see the query-level condition rather than the interrupted step's error.
func (o *Orchestrator) asTimeout(ctx context.Context, queryID string, start time.Time, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &core.TimeoutError{QueryID: queryID, Elapsed: time.Since(start)}
	}
	return err
}

func firstUnstarted(plan core.Plan, started map[int]bool) int {
	for _, task := range plan {
		if !started[task.Index] {
			return task.Index
		}
	}
	return -1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
