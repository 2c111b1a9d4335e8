// Package agentiq provides a high-level façade over the orchestration core:
// budget-guarded planning, task execution, and synthesis. Most applications
// interact with this package by:
//  1. Creating an AgentIQ via New() (optionally overriding the ledger store,
//     capabilities, or settings)
//  2. Registering capabilities for the agent names their planner emits
//  3. Executing queries with ExecuteQuery and reading BudgetStatus
//
// The façade delegates orchestration to orchestrator.Orchestrator while
// keeping setup ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply the Redis
// ledger store and provider-backed models.
package agentiq

import (
	"context"
	"fmt"
	"strings"

	"github.com/agentiq/agentiq/budget"
	"github.com/agentiq/agentiq/capability"
	"github.com/agentiq/agentiq/config"
	"github.com/agentiq/agentiq/core"
	"github.com/agentiq/agentiq/ledger"
	"github.com/agentiq/agentiq/logging"
	"github.com/agentiq/agentiq/metrics"
	"github.com/agentiq/agentiq/model"
	"github.com/agentiq/agentiq/orchestrator"
)

// Options configures the AgentIQ instance.
type Options struct {
	// Settings carries budgets, limits, and modes. Defaults to
	// config.Default(); use config.Load() to read the environment.
	Settings config.Settings

	// Store is the usage ledger. Defaults to an in-memory store; production
	// deployments use ledger.NewRedisStoreFromURL.
	Store ledger.Store

	// Model backs the default planner, synthesizer, and data_analysis
	// capability when those are not supplied explicitly.
	Model model.Model

	// Planner overrides the model-backed planner.
	Planner core.Planner

	// Synthesizer overrides the model-backed synthesizer.
	Synthesizer core.Synthesizer

	// Capabilities maps agent names to implementations. Merged over the
	// defaults derived from Model and Settings.
	Capabilities map[string]core.Capability

	// Logger defaults to a JSON logger honoring Settings.LogLevel.
	Logger *logging.AgentIQLogger

	// Metrics receives Prometheus observations. Nil disables them.
	Metrics *metrics.Collector
}

// AgentIQ is the high-level façade aggregating the orchestrator, budget
// guard, and usage ledger.
type AgentIQ struct {
	settings     config.Settings
	store        ledger.Store
	orchestrator *orchestrator.Orchestrator
	logger       *logging.AgentIQLogger
}

// New creates a new AgentIQ instance with optional overrides. A Model (or an
// explicit Planner and Synthesizer pair) is required; everything else has an
// in-memory default.
func New(optFns ...func(o *Options)) (*AgentIQ, error) {
	opts := Options{
		Settings: config.Default(),
		Store:    ledger.NewInMemoryStore(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewLogger(&logging.LoggerConfig{
			Level:  parseLogLevel(opts.Settings.LogLevel),
			Format: opts.Settings.LogFormat,
		})
	}

	capabilities := defaultCapabilities(opts)
	planner := opts.Planner
	if planner == nil {
		if opts.Model == nil {
			return nil, fmt.Errorf("agentiq: a Planner or a Model is required")
		}
		planner = capability.NewModelPlanner(opts.Model, agentNames(capabilities))
	}
	synthesizer := opts.Synthesizer
	if synthesizer == nil {
		if opts.Model == nil {
			return nil, fmt.Errorf("agentiq: a Synthesizer or a Model is required")
		}
		synthesizer = capability.NewModelSynthesizer(opts.Model)
	}

	outputs := budget.DefaultOutputEstimates()
	if opts.Settings.OutputTokensFile != "" {
		loaded, err := budget.LoadOutputEstimates(opts.Settings.OutputTokensFile)
		if err != nil {
			return nil, fmt.Errorf("agentiq: %w", err)
		}
		outputs = loaded
	}

	guard := budget.NewGuard(opts.Store, opts.Settings.DailyBudget, opts.Settings.PerQueryBudget,
		func(o *budget.GuardOptions) {
			o.Enforcement = opts.Settings.BudgetEnforcement
			o.Logger = opts.Logger.WithComponent("guard")
		})
	costModel := budget.NewCostModel(opts.Settings.CostPerInputToken, opts.Settings.CostPerOutputToken)
	executor := orchestrator.NewTaskExecutor(costModel, guard, opts.Store,
		func(o *orchestrator.ExecutorOptions) {
			o.Outputs = outputs
			o.Logger = opts.Logger.WithComponent("executor")
			o.Metrics = opts.Metrics
		})

	orch := orchestrator.New(planner, synthesizer, executor, capabilities,
		func(o *orchestrator.Options) {
			o.MaxTasksPerQuery = opts.Settings.MaxTasksPerQuery
			o.Timeout = opts.Settings.QueryTimeout
			o.DependencyMode = opts.Settings.Dependencies
			o.ExecutionMode = opts.Settings.Execution
			o.MaxConcurrentTasks = opts.Settings.MaxConcurrentTasks
			o.Logger = opts.Logger.WithComponent("orchestrator")
			o.Metrics = opts.Metrics
		})

	return &AgentIQ{
		settings:     opts.Settings,
		store:        opts.Store,
		orchestrator: orch,
		logger:       opts.Logger,
	}, nil
}

// ExecuteQuery runs one query end to end. Failures are reported inside the
// outcome, never as a panic or a bare error.
func (a *AgentIQ) ExecuteQuery(ctx context.Context, query string) core.QueryOutcome {
	return a.orchestrator.ExecuteQuery(ctx, query)
}

// DailyBudgetStatus reports today's spend against the daily cap.
func (a *AgentIQ) DailyBudgetStatus(ctx context.Context) (core.BudgetStatus, error) {
	return a.orchestrator.DailyBudgetStatus(ctx)
}

// UsageHistory returns up to days of daily usage entries, oldest first.
func (a *AgentIQ) UsageHistory(ctx context.Context, days int) ([]ledger.DailyUsage, error) {
	return a.store.History(ctx, days)
}

// ResetUsage clears the ledger entry for the given date key ("2006-01-02",
// UTC). Intended for operational tooling, not the query path.
func (a *AgentIQ) ResetUsage(ctx context.Context, date string) error {
	return a.store.Reset(ctx, date)
}

// RegisterCapability adds or replaces the capability serving an agent name.
// Register before serving traffic.
func (a *AgentIQ) RegisterCapability(name string, c core.Capability) {
	a.orchestrator.RegisterCapability(name, c)
}

// Settings returns the effective configuration.
func (a *AgentIQ) Settings() config.Settings { return a.settings }

// defaultCapabilities derives the built-in capability set: a Tavily search
// agent when a key is configured and model-backed agents when a model is
// available, merged under any explicit overrides.
func defaultCapabilities(opts Options) map[string]core.Capability {
	capabilities := map[string]core.Capability{}
	if opts.Settings.TavilyAPIKey != "" {
		capabilities["web_search"] = capability.NewWebSearch(opts.Settings.TavilyAPIKey)
	}
	if opts.Model != nil {
		capabilities["data_analysis"] = capability.NewModelCapability(opts.Model,
			func(o *capability.ModelCapabilityOptions) {
				o.Instructions = "You are a data analysis assistant. Work only from the task text and the provided context."
			})
	}
	for name, c := range opts.Capabilities {
		capabilities[name] = c
	}
	return capabilities
}

func agentNames(capabilities map[string]core.Capability) []string {
	names := make([]string, 0, len(capabilities))
	for name := range capabilities {
		names = append(names, name)
	}
	return names
}

func parseLogLevel(level string) logging.LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return logging.LogLevelDebug
	case "WARN", "WARNING":
		return logging.LogLevelWarn
	case "ERROR":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}
