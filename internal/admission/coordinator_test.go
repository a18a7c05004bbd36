package admission_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tally/internal/admission"
	"tally/internal/clock"
	"tally/internal/config"
	"tally/internal/logging"
)

type recordingNotifier struct {
	mu      sync.Mutex
	turns   []string
	expired []string
}

func (r *recordingNotifier) NotifyTurnReady(_ context.Context, requesterID string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, requesterID)
	return nil
}

func (r *recordingNotifier) NotifyReservationExpired(_ context.Context, requesterID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, requesterID)
	return nil
}

func (r *recordingNotifier) NotifyQueuePosition(context.Context, string, int) error { return nil }
func (r *recordingNotifier) NotifySessionExpired(context.Context, string, string) error {
	return nil
}
func (r *recordingNotifier) NotifyResultsSaved(context.Context, string, string, int) error {
	return nil
}
func (r *recordingNotifier) NotifyError(context.Context, error, string) error { return nil }
func (r *recordingNotifier) TestNotification(context.Context) error           { return nil }

func (r *recordingNotifier) turnCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.turns)
}

func (r *recordingNotifier) waitForTurns(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.turns) >= n {
			turns := append([]string(nil), r.turns...)
			r.mu.Unlock()
			return turns
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d turn notifications", n)
	return nil
}

func newTestCoordinator(t *testing.T) (*admission.Coordinator, *clock.Manual, *recordingNotifier) {
	t.Helper()
	cfg := config.Default()
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	notifier := &recordingNotifier{}
	coord := admission.NewCoordinator(&cfg, clk, notifier, logging.NewNop())
	return coord, clk, notifier
}

func TestImmediateGrantAndClaim(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	decision := coord.RequestAccess(ctx, "guild", "alice", "punish")
	if decision.State != admission.StateGranted {
		t.Fatalf("state = %s, want granted", decision.State)
	}

	lease, err := coord.Claim(ctx, "guild", "alice")
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if lease.RequesterID != "alice" || lease.Workflow != "punish" {
		t.Errorf("lease = %+v", lease)
	}

	snap := coord.Snapshot("guild")
	if snap.Lease == nil || snap.Reservation != nil {
		t.Errorf("snapshot = %+v, want lease only", snap)
	}
}

func TestClaimWithoutReservation(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)
	if _, err := coord.Claim(context.Background(), "guild", "alice"); !errors.Is(err, admission.ErrNotReserved) {
		t.Fatalf("err = %v, want ErrNotReserved", err)
	}
}

func TestMutualExclusion(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	coord.RequestAccess(ctx, "guild", "alice", "punish")
	if _, err := coord.Claim(ctx, "guild", "alice"); err != nil {
		t.Fatal(err)
	}

	decision := coord.RequestAccess(ctx, "guild", "bob", "remind")
	if decision.State != admission.StateQueued || decision.Position != 1 {
		t.Fatalf("decision = %+v, want queued position 1", decision)
	}

	// Separate communities are isolated tenants.
	other := coord.RequestAccess(ctx, "other-guild", "bob", "remind")
	if other.State != admission.StateGranted {
		t.Fatalf("other community state = %s, want granted", other.State)
	}
}

func TestRequestAccessIsIdempotent(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	coord.RequestAccess(ctx, "guild", "alice", "punish")
	if repeat := coord.RequestAccess(ctx, "guild", "alice", "punish"); repeat.State != admission.StateReserved {
		t.Errorf("reservation holder retry = %+v, want reserved", repeat)
	}

	coord.Claim(ctx, "guild", "alice")
	if repeat := coord.RequestAccess(ctx, "guild", "alice", "punish"); repeat.State != admission.StateActive {
		t.Errorf("lease holder retry = %+v, want active", repeat)
	}

	coord.RequestAccess(ctx, "guild", "bob", "remind")
	if repeat := coord.RequestAccess(ctx, "guild", "bob", "remind"); repeat.State != admission.StateQueued || repeat.Position != 1 {
		t.Errorf("queued retry = %+v, want queued position 1", repeat)
	}
}

func TestReleasePromotesInFIFOOrder(t *testing.T) {
	coord, _, notifier := newTestCoordinator(t)
	ctx := context.Background()

	coord.RequestAccess(ctx, "guild", "alice", "punish")
	coord.Claim(ctx, "guild", "alice")
	coord.RequestAccess(ctx, "guild", "bob", "remind")
	coord.RequestAccess(ctx, "guild", "carol", "remind")

	coord.Release(ctx, "guild")

	snap := coord.Snapshot("guild")
	if snap.Reservation == nil || snap.Reservation.RequesterID != "bob" {
		t.Fatalf("snapshot = %+v, want reservation for bob", snap)
	}
	if len(snap.Waiting) != 1 || snap.Waiting[0].RequesterID != "carol" {
		t.Fatalf("waiting = %+v, want carol only", snap.Waiting)
	}
	if turns := notifier.waitForTurns(t, 1); turns[0] != "bob" {
		t.Errorf("turn notices = %v, want bob first", turns)
	}
}

func TestExpiredReservationPromotesNext(t *testing.T) {
	coord, clk, notifier := newTestCoordinator(t)
	ctx := context.Background()

	coord.RequestAccess(ctx, "guild", "alice", "punish")
	coord.Claim(ctx, "guild", "alice")
	coord.RequestAccess(ctx, "guild", "bob", "remind")
	coord.RequestAccess(ctx, "guild", "carol", "remind")

	coord.Release(ctx, "guild")
	notifier.waitForTurns(t, 1)

	// Bob never claims; after the reservation window carol must be promoted.
	clk.Advance(3 * time.Minute)

	snap := coord.Snapshot("guild")
	if snap.Reservation == nil || snap.Reservation.RequesterID != "carol" {
		t.Fatalf("snapshot = %+v, want reservation for carol", snap)
	}
	if len(snap.Waiting) != 0 {
		t.Fatalf("waiting = %+v, want empty", snap.Waiting)
	}

	// Bob re-requests and lands at the back of a fresh wait list.
	decision := coord.RequestAccess(ctx, "guild", "bob", "remind")
	if decision.State != admission.StateQueued || decision.Position != 1 {
		t.Fatalf("bob re-request = %+v, want queued position 1", decision)
	}

	turns := notifier.waitForTurns(t, 2)
	if turns[1] != "carol" {
		t.Errorf("turn notices = %v, want carol second", turns)
	}
}

func TestClaimedReservationTimerIsStale(t *testing.T) {
	coord, clk, _ := newTestCoordinator(t)
	ctx := context.Background()

	coord.RequestAccess(ctx, "guild", "alice", "punish")
	coord.Claim(ctx, "guild", "alice")

	// The old reservation timer firing late must not disturb the lease.
	clk.Advance(10 * time.Minute)

	snap := coord.Snapshot("guild")
	if snap.Lease == nil || snap.Lease.RequesterID != "alice" {
		t.Fatalf("snapshot = %+v, want alice's lease intact", snap)
	}
}

func TestLeaveRemovesAnyStanding(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)
	ctx := context.Background()

	coord.RequestAccess(ctx, "guild", "alice", "punish")
	coord.Claim(ctx, "guild", "alice")
	coord.RequestAccess(ctx, "guild", "bob", "remind")
	coord.RequestAccess(ctx, "guild", "carol", "remind")

	// Queued entry leaves: carol moves up.
	if !coord.Leave(ctx, "guild", "bob") {
		t.Fatal("expected bob to be removed")
	}
	if decision := coord.RequestAccess(ctx, "guild", "carol", "remind"); decision.Position != 1 {
		t.Errorf("carol position = %d, want 1", decision.Position)
	}

	// Lease holder leaves: carol is promoted.
	if !coord.Leave(ctx, "guild", "alice") {
		t.Fatal("expected alice's lease to be removed")
	}
	snap := coord.Snapshot("guild")
	if snap.Reservation == nil || snap.Reservation.RequesterID != "carol" {
		t.Fatalf("snapshot = %+v, want carol promoted", snap)
	}

	// Reservation holder leaves: slot is free again.
	if !coord.Leave(ctx, "guild", "carol") {
		t.Fatal("expected carol's reservation to be removed")
	}
	if coord.Leave(ctx, "guild", "nobody") {
		t.Error("expected no-op for unknown requester")
	}
	if decision := coord.RequestAccess(ctx, "guild", "dave", "punish"); decision.State != admission.StateGranted {
		t.Errorf("dave = %+v, want immediate grant", decision)
	}
}
