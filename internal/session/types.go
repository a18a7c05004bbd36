package session

import (
	"context"
	"time"

	"tally/internal/aggregate"
	"tally/internal/clock"
	"tally/internal/identity"
	"tally/internal/store"
)

// Sink receives the finalized record of a completed capture. *store.Store
// satisfies it; tests substitute an in-memory implementation.
type Sink interface {
	SaveCapture(ctx context.Context, record store.Record) error
}

// ImageFailure records one image whose recognition failed. Failures never
// abort a batch; they are surfaced here so the owner can re-shoot.
type ImageFailure struct {
	Round  int
	Image  int
	Reason string
}

// BatchSummary reports the outcome of one SubmitImages call.
type BatchSummary struct {
	Submitted int
	Processed int
	Failed    int
	// Cancelled is set when a cancel or expiry request arrived mid-batch and
	// the session was torn down after draining.
	Cancelled bool
	Stats     aggregate.Stats
}

// View is a point-in-time snapshot of one capture session, safe to retain
// after the manager lock is released.
type View struct {
	SessionID   string
	CommunityID string
	OwnerID     string
	Workflow    string
	Stage       Stage
	Round       int
	Images      int
	Stats       aggregate.Stats
	Conflicts   []aggregate.Conflict
	Unmatched   []identity.Match
	Failures    []ImageFailure
}

// capture is the manager-internal session state. All fields are guarded by
// the manager mutex; only the recognition loop runs outside it.
type capture struct {
	id          string
	communityID string
	ownerID     string
	workflow    string
	createdAt   time.Time

	stage     Stage
	round     int
	agg       *aggregate.Aggregator
	series    aggregate.Series
	members   []identity.Member
	images    int
	failures  []ImageFailure
	unmatched []identity.Match

	processing        bool
	cancelWhenDrained bool
	expireWhenDrained bool
	timer             clock.Timer
}

func (s *capture) rememberUnmatched(match identity.Match) {
	for _, seen := range s.unmatched {
		if seen.Token == match.Token {
			return
		}
	}
	s.unmatched = append(s.unmatched, match)
}
