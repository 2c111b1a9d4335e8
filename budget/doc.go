// Package budget contains the cost model, token estimation heuristics and
// the pre-flight budget guard. The guard is purely advisory: it reads the
// daily ledger but never mutates it. Recording actual usage is the task
// executor's job (see the orchestrator package).
//
// Token estimation is deliberately approximate (character count / 4) and
// isolated behind the TokenEstimator interface so a precise tokenizer can be
// substituted without touching guard logic. Swapping the heuristic changes
// the meaning of the configured budget constants; retune them together.
package budget
