package core

import "time"

// CostBreakdown itemizes the spend attributed to one query.
type CostBreakdown struct {
	// TotalCost is the sum of all recorded task costs for the query.
	TotalCost float64 `json:"total_cost"`

	// AgentCosts maps agent name to its most recent recorded task cost
	// (last-write-wins when an agent runs multiple tasks in one query).
	AgentCosts map[string]float64 `json:"agent_costs"`

	// Currency is the ISO currency code the amounts are denominated in.
	Currency string `json:"currency"`
}

// QueryOutcome is the structured result of one query execution. The
// orchestrator never raises an unhandled fault past its boundary: failures
// are reported as an outcome with an empty Answer and a non-nil Err.
type QueryOutcome struct {
	QueryID       string        `json:"query_id"`
	Answer        string        `json:"answer"`
	Plan          Plan          `json:"plan"`
	Results       map[int]any   `json:"results"`
	CostBreakdown CostBreakdown `json:"cost_breakdown"`
	Elapsed       time.Duration `json:"elapsed"`

	// Err carries the structured failure when the query did not complete.
	Err error `json:"-"`

	// ErrorDescription is the serializable form of Err for API consumers.
	ErrorDescription string `json:"error,omitempty"`
}

// Failed reports whether the query ended in the FAILED state.
func (o QueryOutcome) Failed() bool { return o.Err != nil }

// BudgetStatus is the point-in-time view of the daily cost ledger exposed to
// callers of the core.
type BudgetStatus struct {
	Date               string  `json:"date"`
	TotalCost          float64 `json:"total_cost"`
	TotalTokens        int64   `json:"total_tokens"`
	QueriesProcessed   int64   `json:"queries_processed"`
	DailyBudget        float64 `json:"daily_budget"`
	BudgetUsagePercent float64 `json:"budget_usage_percent"`
	RemainingBudget    float64 `json:"remaining_budget"`
}
