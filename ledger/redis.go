package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/agentiq/agentiq/core"
)

const (
	usageKeyPrefix = "daily_usage:"
	logKeyPrefix   = "usage_log:"

	fieldTotalCost        = "total_cost"
	fieldTotalTokens      = "total_tokens"
	fieldQueriesProcessed = "queries_processed"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	// Retention is the expiry applied to daily accumulator entries.
	Retention time.Duration

	// LogRetention is the expiry applied to the per-day audit log.
	LogRetention time.Duration
}

// RedisStore implements Store on top of Redis hashes. Each day's entry is a
// hash at daily_usage:<date> updated with HINCRBYFLOAT / HINCRBY, which are
// atomic per field on the server: concurrent orchestrator instances never
// lose updates. The audit log is a list at usage_log:<date>.
type RedisStore struct {
	client       redis.UniversalClient
	retention    time.Duration
	logRetention time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{
		Retention:    7 * 24 * time.Hour,
		LogRetention: 30 * 24 * time.Hour,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &RedisStore{client: client, retention: opts.Retention, logRetention: opts.LogRetention}
}

// NewRedisStoreFromURL connects to the given redis:// URL.
func NewRedisStoreFromURL(url string, optFns ...func(o *RedisOptions)) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedisStore(redis.NewClient(opts), optFns...), nil
}

func usageKey(date string) string { return usageKeyPrefix + date }
func logKey(date string) string   { return logKeyPrefix + date }

// Increment implements Store. The three counter updates and the expiry
// refresh are sent as one MULTI/EXEC transaction.
func (s *RedisStore) Increment(ctx context.Context, date string, cost float64, tokens int64) error {
	key := usageKey(date)
	pipe := s.client.TxPipeline()
	pipe.HIncrByFloat(ctx, key, fieldTotalCost, cost)
	pipe.HIncrBy(ctx, key, fieldTotalTokens, tokens)
	pipe.HIncrBy(ctx, key, fieldQueriesProcessed, 1)
	pipe.Expire(ctx, key, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return &core.LedgerUnavailableError{Op: "increment", Cause: err}
	}
	return nil
}

// Read implements Store. A missing hash reads as zeros.
func (s *RedisStore) Read(ctx context.Context, date string) (DailyUsage, error) {
	fields, err := s.client.HGetAll(ctx, usageKey(date)).Result()
	if err != nil {
		return DailyUsage{}, &core.LedgerUnavailableError{Op: "read", Cause: err}
	}
	return parseUsage(date, fields)
}

func parseUsage(date string, fields map[string]string) (DailyUsage, error) {
	d := DailyUsage{Date: date}
	if len(fields) == 0 {
		return d, nil
	}
	var err error
	if v, ok := fields[fieldTotalCost]; ok {
		if d.TotalCost, err = strconv.ParseFloat(v, 64); err != nil {
			return DailyUsage{Date: date}, fmt.Errorf("corrupt ledger entry %s: %w", date, err)
		}
	}
	if v, ok := fields[fieldTotalTokens]; ok {
		if d.TotalTokens, err = strconv.ParseInt(v, 10, 64); err != nil {
			return DailyUsage{Date: date}, fmt.Errorf("corrupt ledger entry %s: %w", date, err)
		}
	}
	if v, ok := fields[fieldQueriesProcessed]; ok {
		if d.QueriesProcessed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return DailyUsage{Date: date}, fmt.Errorf("corrupt ledger entry %s: %w", date, err)
		}
	}
	return d, nil
}

// AppendRecord implements Store. Records are pushed as JSON onto the day's
// list; the list expires after the log retention window.
func (s *RedisStore) AppendRecord(ctx context.Context, rec UsageRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal usage record: %w", err)
	}
	key := logKey(DateKey(rec.Timestamp))
	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.Expire(ctx, key, s.logRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return &core.LedgerUnavailableError{Op: "append", Cause: err}
	}
	return nil
}

// History implements Store, reading the last `days` hashes oldest first.
func (s *RedisStore) History(ctx context.Context, days int) ([]DailyUsage, error) {
	now := time.Now().UTC()
	keys := make([]string, 0, days)
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := DateKey(now.AddDate(0, 0, -i))
		keys = append(keys, date)
		cmds = append(cmds, pipe.HGetAll(ctx, usageKey(date)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, &core.LedgerUnavailableError{Op: "read", Cause: err}
	}
	out := make([]DailyUsage, 0, days)
	for i, cmd := range cmds {
		d, err := parseUsage(keys[i], cmd.Val())
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Reset implements Store, deleting the accumulator and audit log for a date.
func (s *RedisStore) Reset(ctx context.Context, date string) error {
	if err := s.client.Del(ctx, usageKey(date), logKey(date)).Err(); err != nil {
		return &core.LedgerUnavailableError{Op: "reset", Cause: err}
	}
	return nil
}
