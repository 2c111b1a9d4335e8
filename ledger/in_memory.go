package ledger

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a process-local Store. Increment holds a single lock for
// the whole update, giving the same no-lost-updates guarantee as the Redis
// backend within one process. Suitable for tests and local development; swap
// for RedisStore when multiple orchestrator instances share a ledger.
//
// Concurrency: protected by RWMutex.
type InMemoryStore struct {
	mu      sync.RWMutex
	days    map[string]DailyUsage  // date key -> accumulators
	records map[string][]UsageRecord // date key -> audit log, append order
}

// NewInMemoryStore creates a new in-memory ledger store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		days:    make(map[string]DailyUsage),
		records: make(map[string][]UsageRecord),
	}
}

// Increment implements Store.
func (s *InMemoryStore) Increment(_ context.Context, date string, cost float64, tokens int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.days[date]
	d.Date = date
	d.TotalCost += cost
	d.TotalTokens += tokens
	d.QueriesProcessed++
	s.days[date] = d
	return nil
}

// Read implements Store. Missing dates read as zeros.
func (s *InMemoryStore) Read(_ context.Context, date string) (DailyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.days[date]
	if !ok {
		return DailyUsage{Date: date}, nil
	}
	return d, nil
}

// AppendRecord implements Store.
func (s *InMemoryStore) AppendRecord(_ context.Context, rec UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := DateKey(rec.Timestamp)
	s.records[key] = append(s.records[key], rec)
	return nil
}

// Records returns a copy of the audit log for the given date key.
func (s *InMemoryStore) Records(date string) []UsageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UsageRecord, len(s.records[date]))
	copy(out, s.records[date])
	return out
}

// History implements Store, returning the last `days` entries oldest first.
func (s *InMemoryStore) History(_ context.Context, days int) ([]DailyUsage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]DailyUsage, 0, days)
	now := time.Now().UTC()
	for i := days - 1; i >= 0; i-- {
		key := DateKey(now.AddDate(0, 0, -i))
		d, ok := s.days[key]
		if !ok {
			d = DailyUsage{Date: key}
		}
		out = append(out, d)
	}
	return out, nil
}

// Reset implements Store.
func (s *InMemoryStore) Reset(_ context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.days, date)
	delete(s.records, date)
	return nil
}
