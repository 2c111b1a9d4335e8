// Package capability provides the built-in planner, synthesizer, and task
// capabilities that back the orchestrator. Model-backed implementations wrap
// any model.Model; StaticCapability serves tests and examples without a
// provider.
package capability
