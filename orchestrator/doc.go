// Package orchestrator implements the query execution state machine: plan a
// query into tasks, execute the tasks under the budget guard in dependency
// order, then synthesize the final answer.
//
// The orchestrator never raises an unhandled fault past ExecuteQuery. Every
// failure, including planner faults and elapsed deadlines, is reported as a
// structured core.QueryOutcome with a typed error attached.
package orchestrator
