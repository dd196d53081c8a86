package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
	"github.com/goliatone/go-eclipse/components/eclipse/commands"
	"github.com/goliatone/go-eclipse/components/eclipse/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	StartSession gocommand.Commander[commands.StartSessionInput]
	InputEmail   gocommand.Commander[commands.InputEmailInput]
	SubmitEmail  gocommand.Commander[commands.SubmitEmailInput]
	Navigate     gocommand.Commander[commands.NavigateInput]
	ToggleChat   gocommand.Commander[commands.ToggleChatInput]
	ChatDraft    gocommand.Commander[commands.ChatDraftInput]
	SendChat     gocommand.Commander[commands.SendChatInput]
	Session      gocommand.Querier[queries.SessionInput, eclipse.SessionSnapshot]
	Catalog      gocommand.Querier[queries.CatalogInput, []eclipse.Metric]
	Limiter      *ChatLimiter
	Logger       *zap.Logger
}

// NewHandlers wires every command and query against the service.
func NewHandlers(service *eclipse.Service, limiter *ChatLimiter, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		StartSession: commands.NewStartSessionCommand(service),
		InputEmail:   commands.NewInputEmailCommand(service),
		SubmitEmail:  commands.NewSubmitEmailCommand(service),
		Navigate:     commands.NewNavigateCommand(service),
		ToggleChat:   commands.NewToggleChatCommand(service),
		ChatDraft:    commands.NewUpdateChatDraftCommand(service),
		SendChat:     commands.NewSendChatCommand(service),
		Session:      queries.NewSessionQuery(service),
		Catalog:      queries.NewCatalogQuery(service),
		Limiter:      limiter,
		Logger:       logger,
	}
}

// Routes registers the JSON API on mux under prefix (e.g. "/eclipse").
func (h *Handlers) Routes(mux *http.ServeMux, prefix string) {
	prefix = strings.TrimRight(prefix, "/")
	mux.HandleFunc("POST "+prefix+"/api/sessions", h.HandleCreateSession)
	mux.HandleFunc("GET "+prefix+"/api/catalog", h.HandleCatalog)
	withSession := func(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, r.PathValue("session"))
		}
	}
	mux.HandleFunc("GET "+prefix+"/api/sessions/{session}", withSession(h.HandleGetSession))
	mux.HandleFunc("POST "+prefix+"/api/sessions/{session}/email", withSession(h.HandleSubmitEmail))
	mux.HandleFunc("POST "+prefix+"/api/sessions/{session}/email/input", withSession(h.HandleInputEmail))
	mux.HandleFunc("POST "+prefix+"/api/sessions/{session}/navigate", withSession(h.HandleNavigate))
	mux.HandleFunc("POST "+prefix+"/api/sessions/{session}/chat", withSession(h.HandleSendChat))
	mux.HandleFunc("POST "+prefix+"/api/sessions/{session}/chat/input", withSession(h.HandleChatInput))
	mux.HandleFunc("POST "+prefix+"/api/sessions/{session}/chat/toggle", withSession(h.HandleToggleChat))
}

// HandleCreateSession starts a session and returns its snapshot.
func (h *Handlers) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var snapshot eclipse.SessionSnapshot
	if err := h.StartSession.Execute(requestContext(r, ""), commands.StartSessionInput{Result: &snapshot}); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshot)
}

// HandleGetSession returns the session snapshot.
func (h *Handlers) HandleGetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.respondWithSession(w, requestContext(r, sessionID), sessionID, http.StatusOK)
}

// HandleCatalog returns the metric catalog, optionally filtered by ?view=.
func (h *Handlers) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.Catalog.Query(r.Context(), queries.CatalogInput{View: eclipse.Category(r.URL.Query().Get("view"))})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metrics": metrics})
}

// HandleInputEmail records a landing-form keystroke.
func (h *Handlers) HandleInputEmail(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.InputEmailInput
	if !h.decode(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	ctx := requestContext(r, sessionID)
	if err := h.InputEmail.Execute(ctx, payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithSession(w, ctx, sessionID, http.StatusOK)
}

// HandleSubmitEmail submits the landing form. An invalid email answers 422
// with the session so clients can render the inline message.
func (h *Handlers) HandleSubmitEmail(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.SubmitEmailInput
	if !h.decode(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	ctx := requestContext(r, sessionID)
	if err := h.SubmitEmail.Execute(ctx, payload); err != nil {
		if StatusFor(err) != http.StatusUnprocessableEntity {
			h.writeError(w, err)
			return
		}
		snapshot, qerr := h.Session.Query(ctx, queries.SessionInput{SessionID: sessionID})
		if qerr != nil {
			h.writeError(w, qerr)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: eclipse.InvalidEmailMessage, Session: &snapshot})
		return
	}
	h.respondWithSession(w, ctx, sessionID, http.StatusOK)
}

// HandleNavigate applies a view transition.
func (h *Handlers) HandleNavigate(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.NavigateInput
	if !h.decode(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	ctx := requestContext(r, sessionID)
	if err := h.Navigate.Execute(ctx, payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithSession(w, ctx, sessionID, http.StatusOK)
}

// HandleToggleChat opens or closes the chat panel.
func (h *Handlers) HandleToggleChat(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.ToggleChatInput
	if !h.decode(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	ctx := requestContext(r, sessionID)
	if err := h.ToggleChat.Execute(ctx, payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithSession(w, ctx, sessionID, http.StatusOK)
}

// HandleChatInput stores the chat draft.
func (h *Handlers) HandleChatInput(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.ChatDraftInput
	if !h.decode(w, r, &payload) {
		return
	}
	payload.SessionID = sessionID
	ctx := requestContext(r, sessionID)
	if err := h.ChatDraft.Execute(ctx, payload); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondWithSession(w, ctx, sessionID, http.StatusOK)
}

// HandleSendChat sends a chat message; the reply arrives asynchronously.
func (h *Handlers) HandleSendChat(w http.ResponseWriter, r *http.Request, sessionID string) {
	var payload commands.SendChatInput
	if !h.decode(w, r, &payload) {
		return
	}
	ctx := requestContext(r, sessionID)
	if err := h.AllowChat(ctx, sessionID); err != nil {
		h.writeError(w, err)
		return
	}
	var sent bool
	payload.SessionID = sessionID
	payload.Sent = &sent
	if err := h.SendChat.Execute(ctx, payload); err != nil {
		h.writeError(w, err)
		return
	}
	status := http.StatusAccepted
	if !sent {
		status = http.StatusOK
	}
	h.respondWithSession(w, ctx, sessionID, status)
}

// AllowChat applies the chat rate limit to an existing session. Unknown
// sessions are rejected before a limiter bucket is allocated for them.
func (h *Handlers) AllowChat(ctx context.Context, sessionID string) error {
	if _, err := h.Session.Query(ctx, queries.SessionInput{SessionID: sessionID}); err != nil {
		return err
	}
	if !h.Limiter.Allow(sessionID) {
		return ErrRateLimited
	}
	return nil
}

type errorResponse struct {
	Error   string                   `json:"error"`
	Session *eclipse.SessionSnapshot `json:"session,omitempty"`
}

func (h *Handlers) respondWithSession(w http.ResponseWriter, ctx context.Context, sessionID string, status int) {
	snapshot, err := h.Session.Query(ctx, queries.SessionInput{SessionID: sessionID})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, status, snapshot)
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		h.writeError(w, fmt.Errorf("%w: %v", ErrBadRequest, err))
		return false
	}
	return true
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError && h.Logger != nil {
		h.Logger.Error("api request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func requestContext(r *http.Request, sessionID string) context.Context {
	return eclipse.ContextWithRequest(r.Context(), eclipse.RequestInfo{
		Path:      r.URL.Path,
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		SessionID: sessionID,
	})
}
