package budget

import (
	"context"

	"github.com/agentiq/agentiq/config"
	"github.com/agentiq/agentiq/ledger"
	"github.com/agentiq/agentiq/logging"
)

// Rejection reasons carried on Decision and BudgetExceededError.
const (
	ReasonPerQueryBudget    = "per_query_budget"
	ReasonDailyBudget       = "daily_budget"
	ReasonLedgerUnavailable = "ledger_unavailable"
)

// Decision is the transient outcome of one pre-flight budget check. It is
// never stored; the current figures are included for observability only.
type Decision struct {
	Approved                bool    `json:"approved"`
	EstimatedCost           float64 `json:"estimated_cost"`
	CurrentDailyUsage       float64 `json:"current_daily_usage"`
	RemainingDailyBudget    float64 `json:"remaining_daily_budget"`
	RemainingPerQueryBudget float64 `json:"remaining_per_query_budget"`

	// Reason names the violated cap when Approved is false.
	Reason string `json:"reason,omitempty"`

	// Err carries an internal error swallowed by the fail-open policy (or
	// surfaced as the rejection cause under strict enforcement).
	Err error `json:"-"`
}

// GuardOptions configures optional Guard behavior.
type GuardOptions struct {
	// Enforcement selects the policy applied when the ledger cannot be read.
	Enforcement config.EnforcementMode

	// Logger receives fail-open warnings. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Guard decides admission of an estimated cost against the per-query cap and
// the remaining daily cap. It is stateless aside from reading the ledger and
// never mutates it; only the task executor records usage.
type Guard struct {
	store          ledger.Reader
	dailyBudget    float64
	perQueryBudget float64
	enforcement    config.EnforcementMode
	logger         logging.Logger
}

// NewGuard creates a Guard reading daily usage from store.
func NewGuard(store ledger.Reader, dailyBudget, perQueryBudget float64, optFns ...func(o *GuardOptions)) *Guard {
	opts := GuardOptions{
		Enforcement: config.EnforcementFailOpen,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Guard{
		store:          store,
		dailyBudget:    dailyBudget,
		perQueryBudget: perQueryBudget,
		enforcement:    opts.Enforcement,
		logger:         opts.Logger,
	}
}

// Check returns the admission decision for estimatedCost.
//
// The per-query cap is checked first and needs no ledger access, so it
// rejects even during a ledger outage. The daily cap requires reading
// today's usage; when that read fails the guard applies the configured
// enforcement mode. Fail-open approves with a zero estimate and the error
// attached; the swallowed error is logged here since it will not surface to
// the caller.
func (g *Guard) Check(ctx context.Context, estimatedCost float64) Decision {
	if estimatedCost > g.perQueryBudget {
		return Decision{
			Approved:                false,
			EstimatedCost:           estimatedCost,
			RemainingPerQueryBudget: g.perQueryBudget - estimatedCost,
			Reason:                  ReasonPerQueryBudget,
		}
	}

	usage, err := g.store.Read(ctx, ledger.Today())
	if err != nil {
		if g.enforcement == config.EnforcementStrict {
			g.logger.Error("Budget check failed, rejecting under strict enforcement", "error", err)
			return Decision{Approved: false, EstimatedCost: estimatedCost, Reason: ReasonLedgerUnavailable, Err: err}
		}
		g.logger.Error("Budget check failed, failing open", "error", err)
		return Decision{Approved: true, EstimatedCost: 0, Err: err}
	}

	remainingDaily := g.dailyBudget - usage.TotalCost
	if estimatedCost > remainingDaily {
		g.logger.Warn("Daily budget exceeded",
			"estimated_cost", estimatedCost,
			"current_usage", usage.TotalCost,
			"remaining_budget", remainingDaily,
			"daily_budget", g.dailyBudget,
		)
		return Decision{
			Approved:                false,
			EstimatedCost:           estimatedCost,
			CurrentDailyUsage:       usage.TotalCost,
			RemainingDailyBudget:    remainingDaily,
			RemainingPerQueryBudget: g.perQueryBudget - estimatedCost,
			Reason:                  ReasonDailyBudget,
		}
	}

	return Decision{
		Approved:                true,
		EstimatedCost:           estimatedCost,
		CurrentDailyUsage:       usage.TotalCost,
		RemainingDailyBudget:    remainingDaily,
		RemainingPerQueryBudget: g.perQueryBudget - estimatedCost,
	}
}

// DailyBudget returns the configured daily cap.
func (g *Guard) DailyBudget() float64 { return g.dailyBudget }

// PerQueryBudget returns the configured per-query cap.
func (g *Guard) PerQueryBudget() float64 { return g.perQueryBudget }
