package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/admission"
	"tally/internal/aggregate"
	"tally/internal/clock"
	"tally/internal/config"
	"tally/internal/identity"
	"tally/internal/logging"
	"tally/internal/notify"
	"tally/internal/ocr"
)

const noticeTimeout = 30 * time.Second

// Manager runs capture sessions. One session may exist per owner at a time;
// creating one consumes the owner's admission reservation and every terminal
// path releases the community lease.
type Manager struct {
	cfg       *config.Config
	admission *admission.Coordinator
	engine    ocr.Engine
	directory identity.Directory
	resolver  *identity.Resolver
	notifier  notify.Service
	sink      Sink
	clock     clock.Clock
	logger    *slog.Logger

	mu       sync.Mutex
	sessions map[string]*capture
}

// NewManager wires a session manager. The identity resolver is built from the
// matching configuration.
func NewManager(cfg *config.Config, coordinator *admission.Coordinator, engine ocr.Engine, directory identity.Directory, sink Sink, notifier notify.Service, clk clock.Clock, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:       cfg,
		admission: coordinator,
		engine:    engine,
		directory: directory,
		resolver:  identity.NewResolver(cfg.Matching),
		notifier:  notifier,
		sink:      sink,
		clock:     clk,
		logger:    logging.NewComponentLogger(logger, "session"),
		sessions:  make(map[string]*capture),
	}
}

// Create claims the owner's reservation, snapshots the community member list
// and starts a fresh session in the awaiting-images stage.
func (m *Manager) Create(ctx context.Context, communityID, ownerID, workflow string) (View, error) {
	m.mu.Lock()
	_, exists := m.sessions[ownerID]
	m.mu.Unlock()
	if exists {
		return View{}, ErrSessionExists
	}

	members, err := m.directory.Members(ctx, communityID)
	if err != nil {
		return View{}, fmt.Errorf("load community members: %w", err)
	}
	if _, err := m.admission.Claim(ctx, communityID, ownerID); err != nil {
		return View{}, fmt.Errorf("claim community lease: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[ownerID]; exists {
		m.admission.Release(ctx, communityID)
		return View{}, ErrSessionExists
	}

	s := &capture{
		id:          uuid.NewString(),
		communityID: communityID,
		ownerID:     ownerID,
		workflow:    workflow,
		createdAt:   m.clock.Now(),
		stage:       StageAwaitingImages,
		round:       1,
		agg:         aggregate.New(),
		members:     members,
	}
	m.sessions[ownerID] = s
	m.touchLocked(s)

	m.logger.Info("session started", logging.Args(
		logging.Session(s.id),
		logging.Community(communityID),
		logging.Requester(ownerID),
		logging.Workflow(workflow),
		logging.Int("members", len(members)),
	)...)
	return m.viewLocked(s), nil
}

// Status returns a snapshot of the owner's active session.
func (m *Manager) Status(ownerID string) (View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookupLocked(ownerID)
	if err != nil {
		return View{}, err
	}
	return m.viewLocked(s), nil
}

// RefreshTimeout restarts the inactivity timer without changing any other
// session state.
func (m *Manager) RefreshTimeout(ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.lookupLocked(ownerID)
	if err != nil {
		return err
	}
	m.touchLocked(s)
	return nil
}

func (m *Manager) lookupLocked(ownerID string) (*capture, error) {
	s, ok := m.sessions[ownerID]
	if !ok {
		return nil, ErrNoSession
	}
	return s, nil
}

func (m *Manager) inactivity() time.Duration {
	return time.Duration(m.cfg.Session.InactivitySeconds) * time.Second
}

// touchLocked restarts the inactivity timer. Every accepted interaction goes
// through here.
func (m *Manager) touchLocked(s *capture) {
	if s.timer != nil {
		s.timer.Stop()
	}
	ownerID, id := s.ownerID, s.id
	s.timer = m.clock.AfterFunc(m.inactivity(), func() {
		m.expire(ownerID, id)
	})
}

func (m *Manager) expire(ownerID, id string) {
	m.mu.Lock()
	s, ok := m.sessions[ownerID]
	if !ok || s.id != id {
		m.mu.Unlock()
		return
	}
	if s.processing {
		// Drain the in-flight batch first; SubmitImages finishes the expiry.
		s.expireWhenDrained = true
		m.mu.Unlock()
		return
	}
	m.teardownLocked(context.Background(), s, StageExpired)
	m.mu.Unlock()

	m.notice("session expired", func(ctx context.Context) error {
		return m.notifier.NotifySessionExpired(ctx, s.ownerID, s.workflow)
	})
}

// teardownLocked ends the session: it stops the timer, removes the session
// from the registry and releases the community lease. Every terminal path
// funnels through here so the lease can never leak.
func (m *Manager) teardownLocked(ctx context.Context, s *capture, terminal Stage) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.stage = terminal
	delete(m.sessions, s.ownerID)
	m.admission.Release(ctx, s.communityID)

	m.logger.Info("session ended", logging.Args(
		logging.Session(s.id),
		logging.Community(s.communityID),
		logging.Requester(s.ownerID),
		logging.String(logging.FieldStage, string(terminal)),
		logging.Int("images", s.images),
		logging.Int("rounds", s.series.Len()),
	)...)
}

func (m *Manager) viewLocked(s *capture) View {
	view := View{
		SessionID:   s.id,
		CommunityID: s.communityID,
		OwnerID:     s.ownerID,
		Workflow:    s.workflow,
		Stage:       s.stage,
		Round:       s.round,
		Images:      s.images,
		Stats:       s.agg.Stats(),
		Conflicts:   s.agg.Conflicts(),
	}
	if len(s.unmatched) > 0 {
		view.Unmatched = append([]identity.Match(nil), s.unmatched...)
	}
	if len(s.failures) > 0 {
		view.Failures = append([]ImageFailure(nil), s.failures...)
	}
	return view
}

// notice delivers a notification in the background so session flow never
// blocks on the notification transport.
func (m *Manager) notice(label string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), noticeTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			m.logger.Warn("notification failed", logging.Args(
				logging.String("notice", label),
				logging.Error(err),
			)...)
		}
	}()
}
