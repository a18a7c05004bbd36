package session

import (
	"context"
	"fmt"

	"tally/internal/aggregate"
	"tally/internal/logging"
	"tally/internal/store"
)

// Done marks the image set complete and moves to the confirmation step. At
// least one image must have been processed.
func (m *Manager) Done(ownerID string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.activeLocked(ownerID, StageAwaitingImages)
	if err != nil {
		return View{}, err
	}
	if s.images == 0 {
		return View{}, ErrNoImages
	}
	s.stage = StageConfirming
	m.touchLocked(s)
	return m.viewLocked(s), nil
}

// AddMore returns from the confirmation step to accepting images. The
// observations recorded so far are kept.
func (m *Manager) AddMore(ownerID string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.activeLocked(ownerID, StageConfirming)
	if err != nil {
		return View{}, err
	}
	s.stage = StageAwaitingImages
	m.touchLocked(s)
	return m.viewLocked(s), nil
}

// Analyze classifies the recorded observations. Sessions with open conflicts
// move to conflict resolution; clean sessions go straight to the final
// confirmation step.
func (m *Manager) Analyze(ownerID string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.activeLocked(ownerID, StageConfirming)
	if err != nil {
		return View{}, err
	}
	if len(s.agg.Conflicts()) > 0 {
		s.stage = StageResolvingConflicts
	} else {
		s.stage = StageFinalConfirmation
	}
	m.touchLocked(s)
	return m.viewLocked(s), nil
}

// ResolveConflict binds an explicit value for one conflicted name. The value
// must be among the observed candidates. Once the last conflict is resolved
// the session moves to final confirmation.
func (m *Manager) ResolveConflict(ownerID, name string, value int64) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.activeLocked(ownerID, StageResolvingConflicts)
	if err != nil {
		return View{}, err
	}
	if err := s.agg.Resolve(name, value); err != nil {
		return View{}, err
	}
	if len(s.agg.Conflicts()) == 0 {
		s.stage = StageFinalConfirmation
	}
	m.touchLocked(s)
	return m.viewLocked(s), nil
}

// NextRound finalizes the current round into the session series and resets
// per-round state so the owner can capture the next round's screenshots.
func (m *Manager) NextRound(ownerID string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.activeLocked(ownerID, StageFinalConfirmation)
	if err != nil {
		return View{}, err
	}
	s.series.AddRound(s.agg.Finalize())
	s.agg = aggregate.New()
	s.round++
	s.images = 0
	s.stage = StageAwaitingImages
	m.touchLocked(s)
	return m.viewLocked(s), nil
}

// Confirm finalizes the session, persists the capture record and releases
// the community lease. The record is returned even when persistence fails so
// the caller can surface what was lost.
func (m *Manager) Confirm(ctx context.Context, ownerID string) (store.Record, error) {
	m.mu.Lock()
	s, err := m.activeLocked(ownerID, StageFinalConfirmation)
	if err != nil {
		m.mu.Unlock()
		return store.Record{}, err
	}
	s.series.AddRound(s.agg.Finalize())

	record := store.Record{
		SessionID:   s.id,
		CommunityID: s.communityID,
		OwnerID:     s.ownerID,
		Workflow:    s.workflow,
		CompletedAt: m.clock.Now().UTC(),
		Totals:      s.series.Totals(),
		Unresolved:  s.series.Unresolved(),
	}
	for _, round := range s.series.Rounds() {
		record.Rounds = append(record.Rounds, round.Scores)
	}
	m.teardownLocked(ctx, s, StageCompleted)
	m.mu.Unlock()

	if err := m.sink.SaveCapture(ctx, record); err != nil {
		m.logger.Error("capture persistence failed", logging.Args(
			logging.Session(record.SessionID),
			logging.Error(err),
		)...)
		m.notice("save failed", func(ctx context.Context) error {
			return m.notifier.NotifyError(ctx, err, "saving capture results")
		})
		return record, fmt.Errorf("save capture: %w", err)
	}
	m.notice("results saved", func(ctx context.Context) error {
		return m.notifier.NotifyResultsSaved(ctx, record.OwnerID, record.Workflow, len(record.Totals))
	})
	return record, nil
}

// Cancel ends the session without persisting anything. When a batch is in
// flight the cancellation is deferred until the batch drains; the returned
// flag reports that case.
func (m *Manager) Cancel(ctx context.Context, ownerID string) (deferred bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookupLocked(ownerID)
	if err != nil {
		return false, err
	}
	if s.processing {
		s.cancelWhenDrained = true
		return true, nil
	}
	m.teardownLocked(ctx, s, StageCancelled)
	return false, nil
}

// activeLocked fetches the owner's session and checks it is in the required
// stage with no batch in flight.
func (m *Manager) activeLocked(ownerID string, stage Stage) (*capture, error) {
	s, err := m.lookupLocked(ownerID)
	if err != nil {
		return nil, err
	}
	if s.processing {
		return nil, ErrProcessing
	}
	if s.stage != stage {
		return nil, fmt.Errorf("%w: %s", ErrWrongStage, s.stage)
	}
	return s, nil
}
