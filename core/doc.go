// Package core provides the foundational domain types, interfaces and error
// kinds used by AgentIQ. It defines the core abstractions for:
//
//   - Tasks and Plans (units of work produced by a planner for one query)
//   - Capabilities (pluggable agents with a uniform execute contract)
//   - Query outcomes (final answer plus per-task results and cost breakdown)
//   - Structured error kinds with errors.Is / errors.As support
//
// The package intentionally keeps implementation concerns (budget
// enforcement, ledger persistence, orchestration) out of scope, exposing
// small interfaces so backends and capabilities can be swapped without
// introducing dependency cycles.
package core
