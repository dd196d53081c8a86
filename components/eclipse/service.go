package eclipse

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errMissingSessionStore = errors.New("eclipse: session store not configured")

	// ErrSessionRequired is returned when an operation or stream names no session.
	ErrSessionRequired = errors.New("eclipse: session id is required")

	// ErrInvalidEmail is returned when the landing form rejects a submission.
	ErrInvalidEmail = errors.New("eclipse: email address is not valid")
)

// Options configures the Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Store      SessionStore
	Catalog    *Catalog
	Telemetry  Telemetry
	Scheduler  Scheduler
	Hook       TranscriptHook
	Logger     *zap.Logger
	ReplyDelay time.Duration
	NewID      func() string
}

// Service owns sessions and applies UI events to them.
type Service struct {
	opts      Options
	pageViews atomic.Bool
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Store == nil {
		opts.Store = NewInMemorySessionStore()
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Hook == nil {
		opts.Hook = noopTranscriptHook{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Catalog returns the metric catalog shared by every session.
func (s *Service) Catalog() *Catalog {
	return s.opts.Catalog
}

// Inject activates passive page-view collection. It is meant to be called once at startup.
func (s *Service) Inject(ctx context.Context) {
	if s.pageViews.Swap(true) {
		return
	}
	if injector, ok := s.opts.Telemetry.(Injector); ok {
		injector.Inject(ctx)
	}
	s.opts.Logger.Info("page view collection enabled")
}

// RecordPageView reports a rendered page when collection is active.
func (s *Service) RecordPageView(ctx context.Context, snapshot SessionSnapshot) {
	if !s.pageViews.Load() {
		return
	}
	payload := map[string]any{"page": string(snapshot.Page)}
	if snapshot.Page == PageDashboard {
		payload["view"] = string(snapshot.CurrentView)
	}
	safeTelemetry{next: s.opts.Telemetry, logger: s.opts.Logger}.Record(ctx, EventPageView, payload)
}

// StartSession creates a session on the landing page.
func (s *Service) StartSession(ctx context.Context) (SessionSnapshot, error) {
	if s.opts.Store == nil {
		return SessionSnapshot{}, errMissingSessionStore
	}
	session := NewSession(SessionConfig{
		ID:         s.opts.NewID(),
		Catalog:    s.opts.Catalog,
		Telemetry:  s.opts.Telemetry,
		Scheduler:  s.opts.Scheduler,
		Hook:       s.opts.Hook,
		Logger:     s.opts.Logger,
		ReplyDelay: s.opts.ReplyDelay,
	})
	if err := s.opts.Store.Save(ctx, session); err != nil {
		return SessionSnapshot{}, err
	}
	s.opts.Logger.Debug("session started", zap.String("session_id", session.ID()))
	return session.Snapshot(), nil
}

// Session returns the live session for id.
func (s *Service) Session(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrSessionRequired
	}
	if s.opts.Store == nil {
		return nil, errMissingSessionStore
	}
	return s.opts.Store.Get(ctx, id)
}

// Snapshot returns a copy of the session state.
func (s *Service) Snapshot(ctx context.Context, id string) (SessionSnapshot, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// InputEmail records a landing-form keystroke.
func (s *Service) InputEmail(ctx context.Context, id, value string) (GateState, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return GateState{}, err
	}
	return session.InputEmail(value), nil
}

// SubmitEmail types value into the landing form and submits it. An already
// unlocked session is returned unchanged.
func (s *Service) SubmitEmail(ctx context.Context, id, value string) (SessionSnapshot, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if session.Page() == PageDashboard {
		return session.Snapshot(), nil
	}
	session.InputEmail(value)
	if !session.SubmitEmail(ctx) {
		return session.Snapshot(), ErrInvalidEmail
	}
	s.opts.Logger.Info("dashboard unlocked", zap.String("session_id", id))
	return session.Snapshot(), nil
}

// OpenBusinessModel navigates to the business model canvas.
func (s *Service) OpenBusinessModel(ctx context.Context, id string) (SessionSnapshot, error) {
	return s.apply(ctx, id, func(session *Session) error {
		return session.OpenBusinessModel(ctx)
	})
}

// SelectMetric handles a metric card click.
func (s *Service) SelectMetric(ctx context.Context, id, metricID string) (SessionSnapshot, error) {
	return s.apply(ctx, id, func(session *Session) error {
		return session.SelectMetric(ctx, metricID)
	})
}

// Back returns to the overview.
func (s *Service) Back(ctx context.Context, id string) (SessionSnapshot, error) {
	return s.apply(ctx, id, func(session *Session) error {
		return session.Back(ctx)
	})
}

// SetChatOpen opens or closes the chat panel.
func (s *Service) SetChatOpen(ctx context.Context, id string, open bool) (SessionSnapshot, error) {
	return s.apply(ctx, id, func(session *Session) error {
		return session.SetChatOpen(ctx, open)
	})
}

// UpdateChatInput stores the chat draft.
func (s *Service) UpdateChatInput(ctx context.Context, id, draft string) (SessionSnapshot, error) {
	return s.apply(ctx, id, func(session *Session) error {
		return session.SetChatInput(draft)
	})
}

// SendChatMessage types draft into the chat input and submits it.
func (s *Service) SendChatMessage(ctx context.Context, id, draft string) (SessionSnapshot, bool, error) {
	var sent bool
	snapshot, err := s.apply(ctx, id, func(session *Session) error {
		if err := session.SetChatInput(draft); err != nil {
			return err
		}
		var sendErr error
		sent, sendErr = session.SendChat(ctx)
		return sendErr
	})
	return snapshot, sent, err
}

func (s *Service) apply(ctx context.Context, id string, fn func(*Session) error) (SessionSnapshot, error) {
	session, err := s.Session(ctx, id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := fn(session); err != nil {
		return session.Snapshot(), err
	}
	return session.Snapshot(), nil
}
