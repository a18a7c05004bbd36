package identity

import "tally/internal/config"

// Scorer computes the similarity between two already-normalized names using
// the tolerance bands from configuration.
type Scorer struct {
	shortMismatchMax int
	longMismatchMax  int
	longLength       int
}

// NewScorer builds a Scorer from the matching configuration.
func NewScorer(cfg config.Matching) Scorer {
	return Scorer{
		shortMismatchMax: cfg.ShortMismatchMax,
		longMismatchMax:  cfg.LongMismatchMax,
		longLength:       cfg.LongLength,
	}
}

// Similarity scores two normalized names in [0, 1]. The cascade, in order:
// exact match, substring containment (both sides at least 3 runes), a bounded
// sliding-window comparison (both sides at least 5 runes), and finally an
// ordered-character-overlap heuristic as a low-confidence fallback.
func (s Scorer) Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if a == b {
		return 1
	}
	if len(ra) >= 3 && len(rb) >= 3 && (contains(ra, rb) || contains(rb, ra)) {
		return 1
	}
	if len(ra) >= 5 && len(rb) >= 5 {
		if score, ok := s.slidingWindow(ra, rb); ok {
			return score
		}
	}
	return orderedOverlap(ra, rb)
}

func contains(haystack, needle []rune) bool {
	if len(needle) > len(haystack) {
		return false
	}
	for offset := 0; offset+len(needle) <= len(haystack); offset++ {
		match := true
		for i, r := range needle {
			if haystack[offset+i] != r {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// slidingWindow slides the shorter name across the longer one and counts
// character mismatches at each offset. The best offset is accepted when its
// mismatch count stays within the tolerance band for the shorter length.
func (s Scorer) slidingWindow(ra, rb []rune) (float64, bool) {
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	allowed := s.shortMismatchMax
	if len(shorter) >= s.longLength {
		allowed = s.longMismatchMax
	}

	best := len(shorter) + 1
	for offset := 0; offset+len(shorter) <= len(longer); offset++ {
		mismatches := 0
		for i, r := range shorter {
			if longer[offset+i] != r {
				mismatches++
				if mismatches > allowed {
					break
				}
			}
		}
		if mismatches < best {
			best = mismatches
		}
	}

	if best > allowed {
		return 0, false
	}
	return 1 - float64(best)/float64(len(shorter)), true
}

// orderedOverlap greedily matches the shorter name's characters against the
// longer one in order, each match consuming the longer name up to and
// including the matched position. The ratio is penalized by the relative
// length difference so that short fragments of long names score low.
func orderedOverlap(ra, rb []rune) float64 {
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	matched := 0
	pos := 0
	for _, r := range shorter {
		for i := pos; i < len(longer); i++ {
			if longer[i] == r {
				matched++
				pos = i + 1
				break
			}
		}
	}

	base := float64(matched) / float64(len(shorter))
	penalty := float64(len(longer)-len(shorter)) / float64(len(longer))
	return base * (1 - penalty)
}
