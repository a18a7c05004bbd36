package aggregate

// Series accumulates finalized rounds of a multi-round workflow and sums
// scores per name across them. The per-round history is preserved so the
// caller can persist the breakdown alongside the totals.
type Series struct {
	rounds []Result
}

// AddRound appends one finalized round.
func (s *Series) AddRound(result Result) {
	s.rounds = append(s.rounds, result)
}

// Len returns the number of completed rounds.
func (s *Series) Len() int { return len(s.rounds) }

// Rounds returns the finalized per-round results in completion order.
func (s *Series) Rounds() []Result {
	rounds := make([]Result, len(s.rounds))
	copy(rounds, s.rounds)
	return rounds
}

// Totals sums scores for the same name across all rounds. A name missing from
// a round (unresolved or simply absent) contributes nothing for that round.
func (s *Series) Totals() map[string]int64 {
	totals := make(map[string]int64)
	for _, round := range s.rounds {
		for name, score := range round.Scores {
			totals[name] += score
		}
	}
	return totals
}

// Unresolved returns the union of names that stayed unresolved in any round,
// deduplicated in first-report order.
func (s *Series) Unresolved() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, round := range s.rounds {
		for _, name := range round.Unresolved {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
