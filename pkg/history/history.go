// Package history records finished solver runs.
//
// A [Store] keeps [Record]s newest first. [FileStore] appends JSON lines
// for local CLI use, [MongoStore] shares runs through MongoDB, and
// [MemoryStore] serves tests and one-shot processes.
package history

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Record summarizes one solver run.
//
// Scores are finite: a run without an incumbent has HasIncumbent false and
// Score 0, and an undefined gap is stored as -1.
type Record struct {
	ID          string `json:"id" bson:"_id"`
	Problem     string `json:"problem" bson:"problem"`
	ProblemHash string `json:"problem_hash" bson:"problem_hash"`

	Solver  string `json:"solver" bson:"solver"`
	Orderer string `json:"orderer" bson:"orderer"`

	Status       string  `json:"status" bson:"status"`
	HasIncumbent bool    `json:"has_incumbent" bson:"has_incumbent"`
	Score        float64 `json:"score" bson:"score"`
	UpperBound   float64 `json:"upper_bound" bson:"upper_bound"`
	Gap          float64 `json:"gap" bson:"gap"`

	Processed int           `json:"processed" bson:"processed"`
	Fathomed  int           `json:"fathomed" bson:"fathomed"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	Cached    bool          `json:"cached" bson:"cached"`

	StartedAt time.Time `json:"started_at" bson:"started_at"`
}

// Store persists run records.
type Store interface {
	Save(ctx context.Context, r Record) error
	// List returns up to limit records, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close(ctx context.Context) error
}

// MemoryStore keeps records in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Save(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	out := slices.Clone(s.records)
	s.mu.Unlock()
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// newestFirst sorts records by descending start time and truncates them.
func newestFirst(records []Record, limit int) []Record {
	slices.SortStableFunc(records, func(a, b Record) int {
		return b.StartedAt.Compare(a.StartedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*MongoStore)(nil)
)
