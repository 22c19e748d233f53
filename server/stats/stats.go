// Package stats keeps in-process counters for matching pipeline outcomes.
package stats

import (
	"sync"
)

// Outcome classifies a single pipeline event.
type Outcome string

const (
	// OutcomeMatched counts newly persisted matches.
	OutcomeMatched Outcome = "matched"
	// OutcomeDuplicate counts pairs skipped because a match already exists.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeExtractionFailed counts failed feature extraction attempts.
	OutcomeExtractionFailed Outcome = "extraction_failed"
	// OutcomeNotifyFailed counts notification deliveries that errored.
	OutcomeNotifyFailed Outcome = "notify_failed"
)

// Counters is a concurrency-safe set of outcome counters.
type Counters struct {
	mu     sync.Mutex
	counts map[Outcome]int64
}

// New creates an empty counter set.
func New() *Counters {
	return &Counters{
		counts: make(map[Outcome]int64),
	}
}

// Inc increments the counter for the given outcome.
func (c *Counters) Inc(outcome Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[outcome]++
}

// Get returns the current count for the given outcome.
func (c *Counters) Get(outcome Outcome) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[outcome]
}

// Snapshot returns a copy of all counters.
func (c *Counters) Snapshot() map[Outcome]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make(map[Outcome]int64, len(c.counts))
	for outcome, count := range c.counts {
		snapshot[outcome] = count
	}
	return snapshot
}
