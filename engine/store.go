package engine

import "flowtop/model"

// DefaultPruneAfter is how many consecutive ticks a key may go unseen
// before the store forgets its counters. Long enough to ride out a few
// idle samples, short enough that PID reuse cannot pair counters from
// two different processes.
const DefaultPruneAfter = 5

// CounterStore remembers the last cumulative counter sample per flow key
// so the aggregator can difference consecutive snapshots. Access is
// serialized by the engine's tick lock.
type CounterStore struct {
	prev       map[model.FlowKey]model.CounterSample
	misses     map[model.FlowKey]int
	pruneAfter int
}

// NewCounterStore creates a store that forgets keys after more than
// pruneAfter consecutive misses. Non-positive values use the default.
func NewCounterStore(pruneAfter int) *CounterStore {
	if pruneAfter <= 0 {
		pruneAfter = DefaultPruneAfter
	}
	return &CounterStore{
		prev:       make(map[model.FlowKey]model.CounterSample),
		misses:     make(map[model.FlowKey]int),
		pruneAfter: pruneAfter,
	}
}

// Update stores the new sample and returns the previous one. ok is false
// for a first-seen key, which therefore reports a zero rate this tick.
func (s *CounterStore) Update(key model.FlowKey, sample model.CounterSample) (prev model.CounterSample, ok bool) {
	prev, ok = s.prev[key]
	s.prev[key] = sample
	delete(s.misses, key)
	return prev, ok
}

// Sweep records a miss for every stored key not in seen and prunes keys
// that have now been missing for more than the configured run. Returns
// the number of keys pruned.
func (s *CounterStore) Sweep(seen map[model.FlowKey]struct{}) int {
	pruned := 0
	for key := range s.prev {
		if _, hit := seen[key]; hit {
			continue
		}
		s.misses[key]++
		if s.misses[key] > s.pruneAfter {
			delete(s.prev, key)
			delete(s.misses, key)
			pruned++
		}
	}
	return pruned
}

// Len returns the number of tracked keys.
func (s *CounterStore) Len() int { return len(s.prev) }
