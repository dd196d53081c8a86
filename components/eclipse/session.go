package eclipse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUnknownMetric is returned when a card id is not in the catalog.
	ErrUnknownMetric = errors.New("eclipse: unknown metric")
	// ErrGateLocked is returned for dashboard operations before an email was collected.
	ErrGateLocked = errors.New("eclipse: dashboard is locked until an email is submitted")
)

// SessionConfig carries the collaborators a session reports to.
type SessionConfig struct {
	ID         string
	CreatedAt  time.Time
	Catalog    *Catalog
	Telemetry  Telemetry
	Scheduler  Scheduler
	Hook       TranscriptHook
	Logger     *zap.Logger
	ReplyDelay time.Duration
}

// Session is the whole per-visitor UI state: the root gate, the landing form
// and the dashboard. Every event and every timer callback is applied under
// the session lock, one at a time, against the live state.
type Session struct {
	mu sync.Mutex

	id         string
	createdAt  time.Time
	catalog    *Catalog
	telemetry  Telemetry
	scheduler  Scheduler
	hook       TranscriptHook
	logger     *zap.Logger
	replyDelay time.Duration

	userEmail string
	unlocked  bool
	gate      EmailGate
	nav       Navigator
	chat      Chat
}

// NewSession builds a session on the landing page with safe defaults.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = TimerScheduler{}
	}
	if cfg.Hook == nil {
		cfg.Hook = noopTranscriptHook{}
	}
	if cfg.ReplyDelay <= 0 {
		cfg.ReplyDelay = DefaultReplyDelay
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	return &Session{
		id:         cfg.ID,
		createdAt:  cfg.CreatedAt,
		catalog:    cfg.Catalog,
		telemetry:  safeTelemetry{next: normalizeTelemetry(cfg.Telemetry), logger: cfg.Logger},
		scheduler:  cfg.Scheduler,
		hook:       cfg.Hook,
		logger:     cfg.Logger.With(zap.String("session_id", cfg.ID)),
		replyDelay: cfg.ReplyDelay,
		nav:        NewNavigator(),
		chat:       NewChat(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Page reports which child the root gate renders.
func (s *Session) Page() Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page()
}

func (s *Session) page() Page {
	if s.unlocked {
		return PageDashboard
	}
	return PageLanding
}

// InputEmail records a landing-form keystroke.
func (s *Session) InputEmail(value string) GateState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		s.gate.Input(value)
	}
	return s.gate.State()
}

// SubmitEmail runs the landing submit handler. It returns true when the gate
// opened; once open it stays open for the session.
func (s *Session) SubmitEmail(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unlocked {
		return false
	}
	submitted, err := s.gate.Submit(func(email string) error {
		s.telemetry.Record(ctx, EventEmailCollected, map[string]any{"email": email})
		return nil
	}, s.onEmailSubmit)
	if err != nil {
		s.logger.Warn("email report failed", zap.Error(err))
	}
	return submitted
}

func (s *Session) onEmailSubmit(email string) {
	s.userEmail = email
	s.unlocked = true
}

// CurrentView returns the active dashboard view.
func (s *Session) CurrentView() ViewKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Current()
}

// OpenBusinessModel navigates overview -> business-model.
func (s *Session) OpenBusinessModel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return ErrGateLocked
	}
	if err := s.nav.OpenBusinessModel(); err != nil {
		return err
	}
	s.telemetry.Record(ctx, EventBusinessModelOpened, nil)
	return nil
}

// SelectMetric handles a metric card click.
func (s *Session) SelectMetric(ctx context.Context, metricID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return ErrGateLocked
	}
	metric, ok := s.catalog.Metric(metricID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMetric, metricID)
	}
	if err := s.nav.SelectMetric(metric); err != nil {
		return err
	}
	s.telemetry.Record(ctx, EventMetricCardClicked, map[string]any{
		"metricId":    metric.ID,
		"metricTitle": metric.Title,
		"view":        string(metric.View),
		"value":       metric.Value,
		"status":      string(metric.Status),
	})
	return nil
}

// Back returns to the overview from any detail view.
func (s *Session) Back(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return ErrGateLocked
	}
	from, err := s.nav.Back()
	if err != nil {
		return err
	}
	s.telemetry.Record(ctx, EventBackToOverview, map[string]any{"from": string(from)})
	return nil
}

// SetChatOpen opens or closes the chat panel.
func (s *Session) SetChatOpen(ctx context.Context, open bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return ErrGateLocked
	}
	event := EventChatClosed
	if open {
		event = EventChatOpened
	}
	s.telemetry.Record(ctx, event, nil)
	s.chat.SetOpen(open)
	return nil
}

// SetChatInput stores the chat draft.
func (s *Session) SetChatInput(draft string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return ErrGateLocked
	}
	s.chat.SetInput(draft)
	return nil
}

// SendChat submits the current draft. Blank drafts are ignored and report false.
// The scripted reply is appended after the reply delay and cannot be cancelled.
func (s *Session) SendChat(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unlocked {
		return false, ErrGateLocked
	}
	sent, ok := s.chat.send()
	if !ok {
		return false, nil
	}
	s.telemetry.Record(ctx, EventChatMessageSent, map[string]any{
		"messageLength":      sent.MessageLength,
		"conversationLength": sent.ConversationLength,
	})
	replyCtx := context.WithoutCancel(ctx)
	s.scheduler.AfterFunc(s.replyDelay, func() {
		s.deliverReply(replyCtx)
	})
	return true, nil
}

func (s *Session) deliverReply(ctx context.Context) {
	s.mu.Lock()
	msg, length := s.chat.deliverReply()
	s.telemetry.Record(ctx, EventChatResponseReceived, nil)
	s.mu.Unlock()

	if err := s.hook.TranscriptUpdated(ctx, TranscriptEvent{
		SessionID: s.id,
		Message:   msg,
		Length:    length,
	}); err != nil {
		s.logger.Debug("transcript hook failed", zap.Error(err))
	}
}

// Snapshot copies the session state under the lock.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		ID:          s.id,
		CreatedAt:   s.createdAt,
		Page:        s.page(),
		UserEmail:   s.userEmail,
		CurrentView: s.nav.Current(),
		Gate:        s.gate.State(),
		Chat:        s.chat.State(),
	}
}

type noopTranscriptHook struct{}

func (noopTranscriptHook) TranscriptUpdated(context.Context, TranscriptEvent) error {
	return nil
}
