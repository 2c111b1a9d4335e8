package ledger

import (
	"context"
	"time"
)

// DateKey formats t as the UTC calendar date string used to key ledger
// entries.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Today returns the ledger key for the current UTC date.
func Today() string { return DateKey(time.Now()) }

// DailyUsage is one day's accumulated spend. A day with no recorded usage
// reads as the zero value; absence is never an error.
type DailyUsage struct {
	Date             string  `json:"date"`
	TotalCost        float64 `json:"total_cost"`
	TotalTokens      int64   `json:"total_tokens"`
	QueriesProcessed int64   `json:"queries_processed"`
}

// UsageRecord is an immutable fact describing one charged capability call.
// Records are appended to a durable audit log and never mutated.
type UsageRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	QueryID      string    `json:"query_id"`
	AgentName    string    `json:"agent_name"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	Cost         float64   `json:"cost"`
}

// TotalTokens returns the combined token count of the record.
func (r UsageRecord) TotalTokens() int { return r.InputTokens + r.OutputTokens }

// Reader is the read-only view of the ledger consumed by the budget guard.
type Reader interface {
	// Read returns the accumulated usage for the given date key. If no entry
	// exists yet the zero DailyUsage (with Date set) is returned.
	Read(ctx context.Context, date string) (DailyUsage, error)
}

// Store is the full ledger contract. Implementations must make Increment a
/// single atomic operation against the backing store: concurrent increments
// from multiple orchestrator instances must never lose an update.
type Store interface {
	Reader

	// Increment atomically adds cost and tokens to the date's accumulators
	// and bumps the query counter by one.
	Increment(ctx context.Context, date string, cost float64, tokens int64) error

	// AppendRecord appends an immutable usage record to the audit log.
	AppendRecord(ctx context.Context, rec UsageRecord) error

	// History returns the last `days` daily entries, oldest first. Days with
	// no usage appear as zero entries.
	History(ctx context.Context, days int) ([]DailyUsage, error)

	// Reset deletes the entry for the given date. Administrative action only
	// (testing, manual override); normal operation never resets.
	Reset(ctx context.Context, date string) error
}
