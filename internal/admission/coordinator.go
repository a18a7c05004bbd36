package admission

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tally/internal/clock"
	"tally/internal/config"
	"tally/internal/logging"
	"tally/internal/notify"
)

// ErrNotReserved is returned by Claim when the requester holds no reservation.
var ErrNotReserved = errors.New("requester holds no reservation")

// Coordinator serializes access to the shared OCR engine per community. All
// mutations of one community's wait list, reservation, and lease happen under
// the coordinator mutex, so no two operations interleave.
type Coordinator struct {
	clock           clock.Clock
	notifier        notify.Service
	logger          *slog.Logger
	reservationTTL  time.Duration
	positionUpdates bool

	mu          sync.Mutex
	communities map[string]*communityState
}

type communityState struct {
	lease       *Lease
	reservation *reservation
	waitlist    []Entry
}

type reservation struct {
	requesterID string
	workflow    string
	expiresAt   time.Time
	timer       clock.Timer
}

// NewCoordinator builds an admission coordinator.
func NewCoordinator(cfg *config.Config, clk clock.Clock, notifier notify.Service, logger *slog.Logger) *Coordinator {
	if clk == nil {
		clk = clock.System()
	}
	return &Coordinator{
		clock:           clk,
		notifier:        notifier,
		logger:          logging.NewComponentLogger(logger, "admission"),
		reservationTTL:  time.Duration(cfg.Queue.ReservationSeconds) * time.Second,
		positionUpdates: cfg.Queue.PositionUpdates,
		communities:     make(map[string]*communityState),
	}
}

// RequestAccess asks for the OCR slot. When nothing is held for the
// community, a time-boxed reservation is created immediately and the caller
// should proceed to Claim. Requesters that already hold the lease, the
// reservation, or a wait-list entry get their existing state back; nobody is
// ever double-queued.
func (c *Coordinator) RequestAccess(ctx context.Context, communityID, requesterID, workflow string) Decision {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.community(communityID)

	if state.lease != nil && state.lease.RequesterID == requesterID {
		return Decision{State: StateActive}
	}
	if state.reservation != nil && state.reservation.requesterID == requesterID {
		return Decision{State: StateReserved, ExpiresAt: state.reservation.expiresAt}
	}
	for i, entry := range state.waitlist {
		if entry.RequesterID == requesterID {
			return Decision{State: StateQueued, Position: i + 1}
		}
	}

	if state.lease == nil && state.reservation == nil && len(state.waitlist) == 0 {
		res := c.reserveLocked(communityID, state, requesterID, workflow)
		return Decision{State: StateGranted, ExpiresAt: res.expiresAt}
	}

	state.waitlist = append(state.waitlist, Entry{
		RequesterID: requesterID,
		Workflow:    workflow,
		EnqueuedAt:  c.clock.Now(),
	})
	c.logger.Info("requester queued",
		logging.Args(
			logging.Community(communityID),
			logging.Requester(requesterID),
			logging.Workflow(workflow),
			logging.Int("position", len(state.waitlist)),
		)...)
	return Decision{State: StateQueued, Position: len(state.waitlist)}
}

// Claim converts the requester's reservation into the community lease. The
// capture session may start once Claim succeeds.
func (c *Coordinator) Claim(ctx context.Context, communityID, requesterID string) (Lease, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.community(communityID)
	res := state.reservation
	if res == nil || res.requesterID != requesterID {
		return Lease{}, ErrNotReserved
	}

	res.timer.Stop()
	state.reservation = nil
	lease := Lease{
		RequesterID: requesterID,
		Workflow:    res.workflow,
		GrantedAt:   c.clock.Now(),
	}
	state.lease = &lease

	c.logger.Info("lease granted",
		logging.Args(
			logging.Community(communityID),
			logging.Requester(requesterID),
			logging.Workflow(res.workflow),
		)...)
	return lease, nil
}

// Release ends the community lease and promotes the next waiting requester.
// It is called on every session teardown path; forgetting it would deadlock
// the whole community.
func (c *Coordinator) Release(ctx context.Context, communityID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.community(communityID)
	if state.lease != nil {
		c.logger.Info("lease released",
			logging.Args(
				logging.Community(communityID),
				logging.Requester(state.lease.RequesterID),
			)...)
	}
	state.lease = nil
	c.promoteLocked(communityID, state)
}

// Leave removes whatever standing the requester has: the lease, the pending
// reservation, or a wait-list entry. It reports whether anything was removed.
// Callers owning an active session must tear the session down themselves;
// releasing the lease here only unblocks the queue.
func (c *Coordinator) Leave(ctx context.Context, communityID, requesterID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.community(communityID)

	if state.lease != nil && state.lease.RequesterID == requesterID {
		state.lease = nil
		c.promoteLocked(communityID, state)
		return true
	}

	if state.reservation != nil && state.reservation.requesterID == requesterID {
		state.reservation.timer.Stop()
		state.reservation = nil
		c.promoteLocked(communityID, state)
		return true
	}

	for i, entry := range state.waitlist {
		if entry.RequesterID == requesterID {
			state.waitlist = append(state.waitlist[:i], state.waitlist[i+1:]...)
			c.notifyPositionsLocked(state)
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the community's admission state.
func (c *Coordinator) Snapshot(communityID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.community(communityID)
	snap := Snapshot{Waiting: make([]Entry, len(state.waitlist))}
	copy(snap.Waiting, state.waitlist)
	if state.lease != nil {
		lease := *state.lease
		snap.Lease = &lease
	}
	if state.reservation != nil {
		snap.Reservation = &ReservationInfo{
			RequesterID: state.reservation.requesterID,
			Workflow:    state.reservation.workflow,
			ExpiresAt:   state.reservation.expiresAt,
		}
	}
	return snap
}

func (c *Coordinator) community(communityID string) *communityState {
	state, ok := c.communities[communityID]
	if !ok {
		state = &communityState{}
		c.communities[communityID] = state
	}
	return state
}

// reserveLocked creates a reservation with its expiry timer. Caller holds the
// coordinator mutex.
func (c *Coordinator) reserveLocked(communityID string, state *communityState, requesterID, workflow string) *reservation {
	res := &reservation{
		requesterID: requesterID,
		workflow:    workflow,
		expiresAt:   c.clock.Now().Add(c.reservationTTL),
	}
	res.timer = c.clock.AfterFunc(c.reservationTTL, func() {
		c.reservationExpired(communityID, res)
	})
	state.reservation = res

	c.logger.Info("slot reserved",
		logging.Args(
			logging.Community(communityID),
			logging.Requester(requesterID),
			logging.Time("expires_at", res.expiresAt),
		)...)
	return res
}

// promoteLocked hands the slot to the head of the wait list. Caller holds the
// coordinator mutex.
func (c *Coordinator) promoteLocked(communityID string, state *communityState) {
	if state.lease != nil || state.reservation != nil || len(state.waitlist) == 0 {
		return
	}

	head := state.waitlist[0]
	state.waitlist = state.waitlist[1:]
	res := c.reserveLocked(communityID, state, head.RequesterID, head.Workflow)

	c.sendNotice(head.RequesterID, func(ctx context.Context) error {
		return c.notifier.NotifyTurnReady(ctx, head.RequesterID, res.expiresAt)
	})
	c.notifyPositionsLocked(state)
}

// reservationExpired runs from the reservation timer. The expired requester
// is dropped entirely; they must re-request and will land at the back.
func (c *Coordinator) reservationExpired(communityID string, res *reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.community(communityID)
	if state.reservation != res {
		// Stale timer: the reservation was claimed or cancelled already.
		return
	}
	state.reservation = nil

	c.logger.Info("reservation expired",
		logging.Args(
			logging.Community(communityID),
			logging.Requester(res.requesterID),
			logging.String(logging.FieldEventType, "reservation_expired"),
		)...)

	c.sendNotice(res.requesterID, func(ctx context.Context) error {
		return c.notifier.NotifyReservationExpired(ctx, res.requesterID)
	})
	c.promoteLocked(communityID, state)
}

func (c *Coordinator) notifyPositionsLocked(state *communityState) {
	if !c.positionUpdates {
		return
	}
	for i, entry := range state.waitlist {
		position := i + 1
		requesterID := entry.RequesterID
		c.sendNotice(requesterID, func(ctx context.Context) error {
			return c.notifier.NotifyQueuePosition(ctx, requesterID, position)
		})
	}
}

// sendNotice dispatches a notification without holding up queue progression.
// Failures are logged and swallowed.
func (c *Coordinator) sendNotice(requesterID string, send func(context.Context) error) {
	if c.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			c.logger.Warn("notification failed",
				logging.Args(logging.Requester(requesterID), logging.Error(err))...)
		}
	}()
}
