// Package logging provides a minimal logging interface and adapters for AgentIQ.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the orchestrator, budget guard and ledger use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - AgentIQLogger with contextual helpers (component, query) and domain
//     specific logging for agent calls, budget decisions and usage records
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
