package aggregate

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoConflict is returned when resolving a name that has no open conflict.
	ErrNoConflict = errors.New("no open conflict for name")
	// ErrUnknownValue is returned when a resolution picks a value no image reported.
	ErrUnknownValue = errors.New("value was not observed for name")
)

// Candidate is one observed value for a conflicted name.
type Candidate struct {
	Value int64
	Count int
}

// Conflict reports a name whose observed scores disagree. Candidates are
// ordered by descending occurrence count; ties keep first-seen order. The
// ordering is presentation advice only — resolution always requires an
// explicit choice, never an automatic majority.
type Conflict struct {
	Name       string
	Candidates []Candidate
}

// Result is the finalized outcome of one aggregation round.
type Result struct {
	Scores map[string]int64
	// Unresolved lists conflicted names that were never resolved. They are
	// absent from Scores so the caller can decide whether to proceed.
	Unresolved []string
}

// Stats summarizes aggregation progress for UI rendering.
type Stats struct {
	Names      int
	Confirmed  int
	Conflicts  int
	ZeroScores int
}

// Aggregator accumulates per-image score observations keyed by resolved name.
// Classification is recomputed from the stored observations, so feeding the
// same ordered inputs always yields the same confirmed/conflict split.
type Aggregator struct {
	order    []string
	observed map[string][]int64
	resolved map[string]int64
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{
		observed: make(map[string][]int64),
		resolved: make(map[string]int64),
	}
}

// Record appends one observed score for a name, creating the entry on first
// sight.
func (a *Aggregator) Record(name string, score int64) {
	if _, ok := a.observed[name]; !ok {
		a.order = append(a.order, name)
	}
	a.observed[name] = append(a.observed[name], score)
}

// Confirmed returns names whose observations are unanimous, including the
// degenerate single-observation case.
func (a *Aggregator) Confirmed() map[string]int64 {
	confirmed := make(map[string]int64)
	for name, scores := range a.observed {
		if value, ok := unanimous(scores); ok {
			confirmed[name] = value
		}
	}
	return confirmed
}

// Conflicts returns the open conflicts in first-seen name order. Names already
// resolved are excluded.
func (a *Aggregator) Conflicts() []Conflict {
	var conflicts []Conflict
	for _, name := range a.order {
		if _, done := a.resolved[name]; done {
			continue
		}
		scores := a.observed[name]
		if _, ok := unanimous(scores); ok {
			continue
		}
		conflicts = append(conflicts, Conflict{Name: name, Candidates: candidates(scores)})
	}
	return conflicts
}

// Resolve binds a conflicted name to one of its observed values.
func (a *Aggregator) Resolve(name string, value int64) error {
	scores, ok := a.observed[name]
	if !ok {
		return fmt.Errorf("resolve %q: %w", name, ErrNoConflict)
	}
	if _, unan := unanimous(scores); unan {
		return fmt.Errorf("resolve %q: %w", name, ErrNoConflict)
	}
	found := false
	for _, s := range scores {
		if s == value {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("resolve %q to %d: %w", name, value, ErrUnknownValue)
	}
	a.resolved[name] = value
	return nil
}

// Finalize combines confirmed names with resolved conflicts. Conflicted names
// left unresolved are omitted from the score map and reported separately.
func (a *Aggregator) Finalize() Result {
	result := Result{Scores: make(map[string]int64, len(a.order))}
	for _, name := range a.order {
		scores := a.observed[name]
		if value, ok := unanimous(scores); ok {
			result.Scores[name] = value
			continue
		}
		if value, ok := a.resolved[name]; ok {
			result.Scores[name] = value
			continue
		}
		result.Unresolved = append(result.Unresolved, name)
	}
	return result
}

// Stats computes progress counters over the current observations.
func (a *Aggregator) Stats() Stats {
	stats := Stats{Names: len(a.order)}
	for _, name := range a.order {
		scores := a.observed[name]
		value, ok := unanimous(scores)
		if !ok {
			if resolvedValue, done := a.resolved[name]; done {
				value, ok = resolvedValue, true
			}
		}
		if ok {
			stats.Confirmed++
			if value == 0 {
				stats.ZeroScores++
			}
		} else {
			stats.Conflicts++
		}
	}
	return stats
}

// Names returns the observed names in first-seen order.
func (a *Aggregator) Names() []string {
	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Observations returns the recorded scores for a name.
func (a *Aggregator) Observations(name string) []int64 {
	scores := a.observed[name]
	cp := make([]int64, len(scores))
	copy(cp, scores)
	return cp
}

func unanimous(scores []int64) (int64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	first := scores[0]
	for _, s := range scores[1:] {
		if s != first {
			return 0, false
		}
	}
	return first, true
}

func candidates(scores []int64) []Candidate {
	counts := make(map[int64]int)
	var order []int64
	for _, s := range scores {
		if _, ok := counts[s]; !ok {
			order = append(order, s)
		}
		counts[s]++
	}

	list := make([]Candidate, 0, len(order))
	for _, value := range order {
		list = append(list, Candidate{Value: value, Count: counts[value]})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Count > list[j].Count })
	return list
}
