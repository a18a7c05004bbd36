package session

import (
	"context"

	"tally/internal/logging"
	"tally/internal/ocr"
)

// SubmitImages runs recognition over a batch of screenshots and folds the
// readings into the session's aggregation. Images are processed in order; a
// failed image is recorded and skipped, never fatal. A cancel or expiry
// request that arrives mid-batch takes effect once the batch drains.
func (m *Manager) SubmitImages(ctx context.Context, ownerID string, images [][]byte) (BatchSummary, error) {
	m.mu.Lock()
	s, err := m.lookupLocked(ownerID)
	if err != nil {
		m.mu.Unlock()
		return BatchSummary{}, err
	}
	if s.stage != StageAwaitingImages {
		m.mu.Unlock()
		return BatchSummary{}, ErrWrongStage
	}
	if s.processing {
		m.mu.Unlock()
		return BatchSummary{}, ErrProcessing
	}
	if len(images) == 0 {
		m.mu.Unlock()
		return BatchSummary{}, ErrEmptyBatch
	}
	if limit := m.cfg.Session.MaxBatchImages; limit > 0 && len(images) > limit {
		m.mu.Unlock()
		return BatchSummary{}, ErrBatchTooLarge
	}
	s.processing = true
	round := s.round
	members := s.members
	batchStart := s.images
	m.mu.Unlock()

	summary := BatchSummary{Submitted: len(images)}
	for i, image := range images {
		m.mu.Lock()
		interrupted := s.cancelWhenDrained || s.expireWhenDrained
		m.mu.Unlock()
		if interrupted || ctx.Err() != nil {
			break
		}

		text, err := m.engine.Recognize(ctx, image)
		m.mu.Lock()
		s.images++
		if err != nil {
			s.failures = append(s.failures, ImageFailure{
				Round:  round,
				Image:  batchStart + i + 1,
				Reason: err.Error(),
			})
			summary.Failed++
			m.mu.Unlock()
			m.logger.Warn("image recognition failed", logging.Args(
				logging.Session(s.id),
				logging.Int("image", batchStart+i+1),
				logging.Error(err),
			)...)
			continue
		}
		readings := ocr.ParseReadings(text)
		for _, reading := range readings {
			match := m.resolver.Resolve(reading.Name, members)
			name := reading.Name
			if match.Accepted {
				name = match.Member.DisplayName
			} else {
				s.rememberUnmatched(match)
			}
			s.agg.Record(name, reading.Score)
		}
		summary.Processed++
		m.mu.Unlock()
	}

	m.mu.Lock()
	s.processing = false
	switch {
	case s.expireWhenDrained:
		m.teardownLocked(ctx, s, StageExpired)
		m.mu.Unlock()
		summary.Cancelled = true
		m.notice("session expired", func(ctx context.Context) error {
			return m.notifier.NotifySessionExpired(ctx, s.ownerID, s.workflow)
		})
		return summary, nil
	case s.cancelWhenDrained:
		m.teardownLocked(ctx, s, StageCancelled)
		m.mu.Unlock()
		summary.Cancelled = true
		return summary, nil
	}
	summary.Stats = s.agg.Stats()
	m.touchLocked(s)
	m.mu.Unlock()
	return summary, nil
}
