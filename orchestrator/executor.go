package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/agentiq/agentiq/budget"
	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/ledger"
	"github.com/agentiq/agentiq/logging"
	"github.com/agentiq/agentiq/metrics"
)

// ExecutorOptions configures optional TaskExecutor behavior.
type ExecutorOptions struct {
	// Estimator converts text into token counts for pre-flight estimates and
	// actual-usage recording. Defaults to the character heuristic.
	Estimator budget.TokenEstimator

	// Outputs is the per-agent output token table. Defaults to the built-in
	// table.
	Outputs budget.OutputEstimates

	// Logger receives budget decisions, agent call outcomes, and recorded
	// usage. Defaults to a discard logger.
	Logger *logging.AgentIQLogger

	// Metrics receives usage and latency observations. Nil disables them.
	Metrics *metrics.Collector
}

// TaskExecutor runs a single task end to end: estimate its cost, clear it
// with the budget guard, invoke the capability, then record actual usage in
// the ledger and the execution context.
type TaskExecutor struct {
	costModel budget.CostModel
	guard     *budget.Guard
	store     ledger.Store
	estimator budget.TokenEstimator
	outputs   budget.OutputEstimates
	logger    *logging.AgentIQLogger
	metrics   *metrics.Collector
}

// NewTaskExecutor creates a TaskExecutor recording usage to store.
func NewTaskExecutor(costModel budget.CostModel, guard *budget.Guard, store ledger.Store, optFns ...func(o *ExecutorOptions)) *TaskExecutor {
	opts := ExecutorOptions{
		Estimator: budget.NewCharEstimator(),
		Outputs:   budget.DefaultOutputEstimates(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelError, Output: io.Discard})
	}
	return &TaskExecutor{
		costModel: costModel,
		guard:     guard,
		store:     store,
		estimator: opts.Estimator,
		outputs:   opts.Outputs,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
	}
}

// Run executes one task through the full budget lifecycle. The dependency
// context is derived from execCtx at call time so a completed dependency's
// result is always visible. A budget rejection aborts before the capability
// is invoked and no usage is recorded for the task.
func (e *TaskExecutor) Run(ctx context.Context, execCtx *ExecutionContext, task core.Task, capability core.Capability) (any, error) {
	depContext := execCtx.DependencyContext(task.DependsOn)

	inputTokens := e.estimator.EstimateTokens(serializeInput(task.Description, depContext))
	outputTokens := e.outputs.Estimate(task.AgentName, task.Description)
	estimated := e.costModel.Estimate(inputTokens, outputTokens)

	decision := e.guard.Check(ctx, estimated)
	e.logger.LogBudgetDecision(task.AgentName, decision.Approved, decision.EstimatedCost, decision.RemainingDailyBudget, decision.Err)
	if !decision.Approved {
		return nil, &core.BudgetExceededError{
			AgentName:     task.AgentName,
			EstimatedCost: estimated,
			Reason:        decision.Reason,
			Remaining:     rejectedRemaining(decision),
		}
	}

	start := time.Now()
	result, err := capability.Execute(ctx, task.Description, depContext)
	dur := time.Since(start)
	e.logger.LogAgentCall(task.AgentName, task.Index, dur, err == nil, err)
	e.metrics.ObserveAgent(task.AgentName, dur)
	if err != nil {
		return nil, &core.AgentExecutionError{AgentName: task.AgentName, Task: task.Description, Cause: err}
	}

	actualOutput := e.estimator.EstimateTokens(serializeResult(result))
	cost := e.costModel.Estimate(inputTokens, actualOutput)
	e.record(ctx, execCtx.QueryID(), task.AgentName, inputTokens, actualOutput, cost)

	execCtx.RecordCost(task.AgentName, cost)
	execCtx.SetResult(task.Index, result)
	return result, nil
}

// synthesisAgent is the reserved agent name for the final synthesis step,
// which goes through the same budget lifecycle as any planned task.
const synthesisAgent = "synthesis"

// RunSynthesis combines the recorded task results into the final answer,
// guarded and recorded like a task execution.
func (e *TaskExecutor) RunSynthesis(ctx context.Context, execCtx *ExecutionContext, synthesizer core.Synthesizer) (string, error) {
	results := execCtx.Results()
	query := execCtx.Query()

	inputTokens := e.estimator.EstimateTokens(serializeInput(query, results))
	outputTokens := e.outputs.Estimate(synthesisAgent, query)
	estimated := e.costModel.Estimate(inputTokens, outputTokens)

	decision := e.guard.Check(ctx, estimated)
	e.logger.LogBudgetDecision(synthesisAgent, decision.Approved, decision.EstimatedCost, decision.RemainingDailyBudget, decision.Err)
	if !decision.Approved {
		return "", &core.BudgetExceededError{
			AgentName:     synthesisAgent,
			EstimatedCost: estimated,
			Reason:        decision.Reason,
			Remaining:     rejectedRemaining(decision),
		}
	}

	start := time.Now()
	answer, err := synthesizer.Synthesize(ctx, query, results)
	dur := time.Since(start)
	e.logger.LogAgentCall(synthesisAgent, -1, dur, err == nil, err)
	e.metrics.ObserveAgent(synthesisAgent, dur)
	if err != nil {
		return "", &core.AgentExecutionError{AgentName: synthesisAgent, Task: query, Cause: err}
	}

	actualOutput := e.estimator.EstimateTokens(answer)
	cost := e.costModel.Estimate(inputTokens, actualOutput)
	e.record(ctx, execCtx.QueryID(), synthesisAgent, inputTokens, actualOutput, cost)

	execCtx.RecordCost(synthesisAgent, cost)
	return answer, nil
}

// BudgetStatus reads today's ledger entry and reports it against the guard's
// daily cap.
func (e *TaskExecutor) BudgetStatus(ctx context.Context) (core.BudgetStatus, error) {
	date := ledger.Today()
	usage, err := e.store.Read(ctx, date)
	if err != nil {
		return core.BudgetStatus{}, err
	}
	daily := e.guard.DailyBudget()
	status := core.BudgetStatus{
		Date:             date,
		TotalCost:        usage.TotalCost,
		TotalTokens:      usage.TotalTokens,
		QueriesProcessed: usage.QueriesProcessed,
		DailyBudget:      daily,
		RemainingBudget:  daily - usage.TotalCost,
	}
	if daily > 0 {
		status.BudgetUsagePercent = usage.TotalCost / daily * 100
		if status.BudgetUsagePercent > 100 {
			status.BudgetUsagePercent = 100
		}
	}
	e.metrics.SetBudgetUsage(status.BudgetUsagePercent)
	return status, nil
}

// record writes actual usage to the ledger. Recording happens after the
// capability already succeeded, so a ledger failure here is logged and
// swallowed rather than failing the task.
func (e *TaskExecutor) record(ctx context.Context, queryID, agentName string, inputTokens, outputTokens int, cost float64) {
	date := ledger.Today()
	if err := e.store.Increment(ctx, date, cost, int64(inputTokens+outputTokens)); err != nil {
		e.logger.Error("Failed to record usage", "agent", agentName, "error", err)
	}
	rec := ledger.UsageRecord{
		Timestamp:    time.Now().UTC(),
		QueryID:      queryID,
		AgentName:    agentName,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		Cost:         cost,
	}
	if err := e.store.AppendRecord(ctx, rec); err != nil {
		e.logger.Error("Failed to append usage record", "agent", agentName, "error", err)
	}
	e.logger.LogUsageRecorded(agentName, inputTokens, outputTokens, cost)
	e.metrics.AddUsage(inputTokens, outputTokens, cost)
}

// rejectedRemaining picks the headroom figure matching the violated cap.
func rejectedRemaining(d budget.Decision) float64 {
	if d.Reason == budget.ReasonDailyBudget {
		return d.RemainingDailyBudget
	}
	return d.RemainingPerQueryBudget
}

// serializeInput approximates the prompt a capability will see: the task
// text plus the serialized dependency context.
func serializeInput(task string, depContext map[int]any) string {
	if len(depContext) == 0 {
		return task
	}
	data, err := json.Marshal(depContext)
	if err != nil {
		return task + fmt.Sprintf("%v", depContext)
	}
	return task + string(data)
}

// serializeResult renders a capability result for output token estimation.
func serializeResult(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
