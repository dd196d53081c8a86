package eclipse

import (
	"context"
	"time"
)

// Status is the precomputed health classification of a metric.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Valid reports whether the status is one of the known classifications.
func (s Status) Valid() bool {
	switch s {
	case StatusGreen, StatusYellow, StatusRed:
		return true
	}
	return false
}

// Glyph returns the marker displayed next to the metric title.
func (s Status) Glyph() string {
	switch s {
	case StatusGreen:
		return "✓"
	case StatusYellow:
		return "!"
	default:
		return "✗"
	}
}

// Metric is one static KPI record of the catalog.
type Metric struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Value    string   `json:"value" yaml:"value"`
	Status   Status   `json:"status" yaml:"status"`
	Progress int      `json:"progress" yaml:"progress"`
	Target   float64  `json:"target" yaml:"target"`
	Details  string   `json:"details" yaml:"details"`
	Trend    string   `json:"trend" yaml:"trend"`
	View     Category `json:"view" yaml:"view"`
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is a single transcript entry.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Page is what the root gate currently renders.
type Page string

const (
	PageLanding   Page = "landing"
	PageDashboard Page = "dashboard"
)

// SessionStore keeps live sessions for the lifetime of the process.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// Scheduler runs deferred callbacks. Scheduled tasks are never cancelled.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func())
}

// TranscriptHook notifies transports (WebSocket/SSE) about transcript changes.
type TranscriptHook interface {
	TranscriptUpdated(ctx context.Context, event TranscriptEvent) error
}

// TranscriptEvent describes a transcript change transports might care about.
type TranscriptEvent struct {
	SessionID string      `json:"session_id"`
	Message   ChatMessage `json:"message"`
	Length    int         `json:"length"`
}

// GateState is the observable state of the landing form.
type GateState struct {
	Email        string `json:"email"`
	EmailValid   *bool  `json:"email_valid"`
	IsSubmitting bool   `json:"is_submitting"`
	CanSubmit    bool   `json:"can_submit"`
}

// ChatState is the observable state of the chat panel.
type ChatState struct {
	Open     bool          `json:"open"`
	Input    string        `json:"input"`
	Messages []ChatMessage `json:"messages"`
	Pending  int           `json:"pending"`
}

// SessionSnapshot is a consistent copy of a session taken under its lock.
type SessionSnapshot struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Page        Page      `json:"page"`
	UserEmail   string    `json:"user_email,omitempty"`
	CurrentView ViewKey   `json:"current_view"`
	Gate        GateState `json:"gate"`
	Chat        ChatState `json:"chat"`
}
