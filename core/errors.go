package core

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel error kinds. Typed errors below unwrap to these so callers can
// classify failures with errors.Is regardless of the carried detail.
var (
	// ErrPlanningFailed indicates the planner capability could not produce a plan.
	ErrPlanningFailed = errors.New("planning failed")
	// ErrTooManyTasks indicates the plan exceeds the configured task maximum.
	ErrTooManyTasks = errors.New("too many tasks")
	// ErrBudgetExceeded indicates a pre-flight budget check rejected a task.
	ErrBudgetExceeded = errors.New("budget exceeded")
	// ErrAgentExecutionFailed indicates a capability invocation failed.
	ErrAgentExecutionFailed = errors.New("agent execution failed")
	// ErrLedgerUnavailable indicates the ledger backing store is unreachable.
	ErrLedgerUnavailable = errors.New("ledger unavailable")
	// ErrTimeout indicates the query deadline elapsed mid-execution.
	ErrTimeout = errors.New("query timeout")
	// ErrInvalidPlan indicates the plan's dependency graph is unexecutable
	// (cycle or forward reference) under strict dependency validation.
	ErrInvalidPlan = errors.New("invalid plan")
)

// PlanningError reports a failure to obtain a plan from the planner.
type PlanningError struct {
	// Query is a truncated copy of the offending query text.
	Query string

	// Cause is the underlying planner error.
	Cause error
}

// Error implements the error interface.
func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed for query %q: %v", e.Query, e.Cause)
}

// Unwrap returns ErrPlanningFailed plus the underlying cause for errors.Is/As.
func (e *PlanningError) Unwrap() []error { return []error{ErrPlanningFailed, e.Cause} }

// TooManyTasksError reports a plan larger than the configured maximum.
type TooManyTasksError struct {
	Planned int
	Max     int
}

// Error implements the error interface.
func (e *TooManyTasksError) Error() string {
	return fmt.Sprintf("too many tasks required: %d > %d", e.Planned, e.Max)
}

// Unwrap returns the sentinel kind for errors.Is support.
func (e *TooManyTasksError) Unwrap() error { return ErrTooManyTasks }

// BudgetExceededError reports a rejected pre-flight budget check. Exactly one
// of the two cap fields describes the limiting budget; Reason names it.
type BudgetExceededError struct {
	// AgentName is the capability whose task was denied.
	AgentName string

	// EstimatedCost is the projected cost that was rejected.
	EstimatedCost float64

	// Reason names the violated cap: "per_query_budget" or "daily_budget".
	Reason string

	// Remaining is the budget headroom the estimate did not fit into.
	Remaining float64
}

// Error implements the error interface.
func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded for agent %s: estimated $%.4f over %s (remaining $%.4f)",
		e.AgentName, e.EstimatedCost, e.Reason, e.Remaining)
}

// Unwrap returns the sentinel kind for errors.Is support.
func (e *BudgetExceededError) Unwrap() error { return ErrBudgetExceeded }

// AgentExecutionError reports a capability invocation failure. It carries the
// agent name and task description so callers can attribute the failure.
type AgentExecutionError struct {
	AgentName string
	Task      string
	Cause     error
}

// Error implements the error interface.
func (e *AgentExecutionError) Error() string {
	return fmt.Sprintf("agent %s failed on task %q: %v", e.AgentName, e.Task, e.Cause)
}

// Unwrap returns ErrAgentExecutionFailed plus the underlying cause.
func (e *AgentExecutionError) Unwrap() []error { return []error{ErrAgentExecutionFailed, e.Cause} }

// LedgerUnavailableError reports an unreachable ledger backing store. The
// budget guard swallows this during pre-flight checks (fail-open policy);
// it surfaces only through logs and the strict enforcement mode.
type LedgerUnavailableError struct {
	// Op is the ledger operation that failed ("read", "increment", "append").
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *LedgerUnavailableError) Error() string {
	return fmt.Sprintf("ledger unavailable during %s: %v", e.Op, e.Cause)
}

// Unwrap returns ErrLedgerUnavailable plus the underlying cause.
func (e *LedgerUnavailableError) Unwrap() []error { return []error{ErrLedgerUnavailable, e.Cause} }

// TimeoutError reports an elapsed query deadline. Usage already recorded for
// prior tasks stands; the in-flight capability call is cancelled.
type TimeoutError struct {
	QueryID string
	Elapsed time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("query %s timed out after %v", e.QueryID, e.Elapsed)
}

// Unwrap returns the sentinel kind for errors.Is support.
func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// InvalidPlanError reports an unexecutable dependency graph found during
// strict plan validation.
type InvalidPlanError struct {
	// TaskIndex is the task at which validation failed.
	TaskIndex int

	// Detail describes the violation (cycle membership or forward reference).
	Detail string
}

// Error implements the error interface.
func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid plan at task %d: %s", e.TaskIndex, e.Detail)
}

// Unwrap returns the sentinel kind for errors.Is support.
func (e *InvalidPlanError) Unwrap() error { return ErrInvalidPlan }
