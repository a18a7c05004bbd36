package identity

import "tally/internal/config"

// Match is the outcome of resolving one OCR token against a candidate set.
// When Accepted is false, Member is nil and Candidate/Score describe the
// closest-scoring name so callers can surface "nearest unmatched" diagnostics.
type Match struct {
	Token     string
	Member    *Member
	Candidate string
	Score     float64
	Accepted  bool
}

// Resolver maps noisy OCR name tokens to known members.
type Resolver struct {
	scorer    Scorer
	threshold float64
}

// NewResolver builds a resolver from the matching configuration.
func NewResolver(cfg config.Matching) *Resolver {
	return &Resolver{
		scorer:    NewScorer(cfg),
		threshold: cfg.AcceptThreshold,
	}
}

// Resolve scores token against every candidate name of every member and
// returns the best match. A member's current display name is preferred over
// an alias at equal score, and the first-listed member wins cross-member
// ties. The match is accepted only at or above the configured threshold.
func (r *Resolver) Resolve(token string, members []Member) Match {
	normalized := Normalize(token)
	result := Match{Token: token}
	if normalized == "" {
		return result
	}

	for i := range members {
		member := &members[i]
		score, candidate := r.scoreMember(normalized, member)
		if score > result.Score {
			result.Score = score
			result.Candidate = candidate
			result.Member = member
		}
	}

	if result.Member != nil && result.Score >= r.threshold {
		result.Accepted = true
	} else {
		result.Member = nil
	}
	return result
}

func (r *Resolver) scoreMember(token string, member *Member) (float64, string) {
	bestScore := r.scorer.Similarity(token, Normalize(member.DisplayName))
	bestName := member.DisplayName
	for _, alias := range member.Aliases {
		if score := r.scorer.Similarity(token, Normalize(alias)); score > bestScore {
			bestScore = score
			bestName = alias
		}
	}
	return bestScore, bestName
}
