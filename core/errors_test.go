package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds_Is(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{&PlanningError{Query: "q", Cause: errors.New("boom")}, ErrPlanningFailed},
		{&TooManyTasksError{Planned: 11, Max: 10}, ErrTooManyTasks},
		{&BudgetExceededError{AgentName: "web_search", EstimatedCost: 0.01, Reason: "daily_budget", Remaining: 0.005}, ErrBudgetExceeded},
		{&AgentExecutionError{AgentName: "web_search", Task: "t", Cause: errors.New("down")}, ErrAgentExecutionFailed},
		{&LedgerUnavailableError{Op: "read", Cause: errors.New("conn refused")}, ErrLedgerUnavailable},
		{&TimeoutError{QueryID: "q1", Elapsed: time.Second}, ErrTimeout},
		{&InvalidPlanError{TaskIndex: 2, Detail: "forward reference to 5"}, ErrInvalidPlan},
	}

	for _, tc := range cases {
		assert.ErrorIs(t, tc.err, tc.kind, "err %v should match kind %v", tc.err, tc.kind)
		// wrapping must not break classification
		assert.ErrorIs(t, fmt.Errorf("task 3: %w", tc.err), tc.kind)
	}
}

func TestErrorKinds_CauseIsPreserved(t *testing.T) {
	cause := errors.New("api error 503")
	err := &AgentExecutionError{AgentName: "synthesis", Task: "combine", Cause: cause}
	assert.ErrorIs(t, err, cause)

	var aee *AgentExecutionError
	require.True(t, errors.As(fmt.Errorf("query failed: %w", err), &aee))
	assert.Equal(t, "synthesis", aee.AgentName)
}

func TestBudgetExceededError_Message(t *testing.T) {
	err := &BudgetExceededError{AgentName: "data_analysis", EstimatedCost: 0.01, Reason: "daily_budget", Remaining: 0.005}
	assert.Contains(t, err.Error(), "daily_budget")
	assert.Contains(t, err.Error(), "data_analysis")
}
