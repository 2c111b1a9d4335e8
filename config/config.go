// Package config loads AgentIQ settings from the environment. A .env file in
// the working directory is honored when present; explicit environment
// variables always win. All settings have production-safe defaults so an
// empty environment yields a usable configuration for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnforcementMode selects the budget guard's behavior when the ledger
// backing store cannot be read during a pre-flight check.
type EnforcementMode string

const (
	// EnforcementFailOpen approves the request when budget state is
	// unreadable. Availability of the query path is prioritized over strict
	// enforcement during infrastructure outages; the error is logged.
	EnforcementFailOpen EnforcementMode = "fail-open"

	// EnforcementStrict rejects the request when budget state is unreadable.
	EnforcementStrict EnforcementMode = "strict"
)

// DependencyMode selects how the orchestrator treats task dependencies whose
// results are not yet present when a task starts.
type DependencyMode string

const (
	// DependencyLenient silently omits unresolved dependency indices from the
	// context passed to the capability.
	DependencyLenient DependencyMode = "lenient"

	// DependencyStrict validates the plan's dependency graph up front and
	// fails the query with an invalid-plan error on cycles or forward
	// references.
	DependencyStrict DependencyMode = "strict"
)

// ExecutionMode selects the task scheduling strategy within one query.
type ExecutionMode string

const (
	// ExecutionSequential runs tasks strictly in plan list order.
	ExecutionSequential ExecutionMode = "sequential"

	// ExecutionParallel runs ready tasks (all dependencies satisfied)
	// concurrently through a bounded worker pool. Requires strict dependency
	// validation to guarantee every task eventually becomes ready.
	ExecutionParallel ExecutionMode = "parallel"
)

// Settings carries all tunable parameters for an AgentIQ deployment.
type Settings struct {
	// Budget limits, USD.
	DailyBudget    float64
	PerQueryBudget float64

	// Model pricing, USD per one million tokens.
	CostPerInputToken  float64
	CostPerOutputToken float64

	// BudgetEnforcement selects fail-open vs strict guard behavior.
	BudgetEnforcement EnforcementMode

	// Orchestration limits.
	MaxTasksPerQuery   int
	MaxQueryLength     int
	QueryTimeout       time.Duration
	Dependencies       DependencyMode
	Execution          ExecutionMode
	MaxConcurrentTasks int

	// Ledger backing store.
	RedisURL          string
	LedgerRetention   time.Duration
	UsageLogRetention time.Duration

	// OutputTokensFile optionally points at a YAML file overriding the
	// per-agent output token estimates.
	OutputTokensFile string

	// External capability credentials.
	TavilyAPIKey string

	// API server.
	ListenAddr string

	// Logging.
	LogLevel  string
	LogFormat string
}

// Default returns the baseline settings matching the documented defaults.
func Default() Settings {
	return Settings{
		DailyBudget:        100.0,
		PerQueryBudget:     5.0,
		CostPerInputToken:  15.0,
		CostPerOutputToken: 75.0,
		BudgetEnforcement:  EnforcementFailOpen,
		MaxTasksPerQuery:   10,
		MaxQueryLength:     1000,
		QueryTimeout:       30 * time.Second,
		Dependencies:       DependencyLenient,
		Execution:          ExecutionSequential,
		MaxConcurrentTasks: 4,
		RedisURL:           "redis://localhost:6379",
		LedgerRetention:    7 * 24 * time.Hour,
		UsageLogRetention:  30 * 24 * time.Hour,
		ListenAddr:         ":8080",
		LogLevel:           "INFO",
		LogFormat:          "json",
	}
}

// Load reads settings from the environment, first merging a .env file when
// one exists in the working directory. Unset or malformed variables fall back
// to their defaults.
func Load() Settings {
	// Missing .env is the common case outside local development.
	_ = godotenv.Load()

	s := Default()
	s.DailyBudget = envFloat("TOKEN_BUDGET_DAILY", s.DailyBudget)
	s.PerQueryBudget = envFloat("TOKEN_BUDGET_PER_QUERY", s.PerQueryBudget)
	s.CostPerInputToken = envFloat("COST_PER_INPUT_TOKEN", s.CostPerInputToken)
	s.CostPerOutputToken = envFloat("COST_PER_OUTPUT_TOKEN", s.CostPerOutputToken)
	s.BudgetEnforcement = EnforcementMode(envString("BUDGET_ENFORCEMENT", string(s.BudgetEnforcement)))
	s.MaxTasksPerQuery = envInt("MAX_AGENTS_PER_QUERY", s.MaxTasksPerQuery)
	s.MaxQueryLength = envInt("MAX_QUERY_LENGTH", s.MaxQueryLength)
	s.QueryTimeout = envSeconds("TIMEOUT_SECONDS", s.QueryTimeout)
	s.Dependencies = DependencyMode(envString("DEPENDENCY_MODE", string(s.Dependencies)))
	s.Execution = ExecutionMode(envString("EXECUTION_MODE", string(s.Execution)))
	s.MaxConcurrentTasks = envInt("MAX_CONCURRENT_TASKS", s.MaxConcurrentTasks)
	s.RedisURL = envString("REDIS_URL", s.RedisURL)
	s.LedgerRetention = envSeconds("LEDGER_RETENTION_SECONDS", s.LedgerRetention)
	s.UsageLogRetention = envSeconds("USAGE_LOG_RETENTION_SECONDS", s.UsageLogRetention)
	s.OutputTokensFile = envString("OUTPUT_TOKENS_FILE", s.OutputTokensFile)
	s.TavilyAPIKey = envString("TAVILY_API_KEY", s.TavilyAPIKey)
	s.ListenAddr = envString("LISTEN_ADDR", s.ListenAddr)
	s.LogLevel = envString("LOG_LEVEL", s.LogLevel)
	s.LogFormat = envString("LOG_FORMAT", s.LogFormat)
	return s
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}
