package gorouter

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
	"github.com/goliatone/go-eclipse/components/eclipse/commands"
	"github.com/goliatone/go-eclipse/components/eclipse/httpapi"
	"github.com/goliatone/go-eclipse/components/eclipse/queries"
)

// DefaultBasePath is where the dashboard is mounted when Config.BasePath is empty.
const DefaultBasePath = "/eclipse"

// Config wires go-router with the eclipse controller, API commands and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *eclipse.Controller
	API        *httpapi.Handlers
	Broadcast  *eclipse.BroadcastHook
	Logger     *zap.Logger
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Landing       string
	Page          string
	Email         string
	BusinessModel string
	Metric        string
	Back          string
	ChatOpen      string
	ChatClose     string
	Chat          string

	Sessions    string
	Session     string
	APIEmail    string
	APIInput    string
	APINavigate string
	APIChat     string
	APIDraft    string
	APIToggle   string
	Catalog     string

	WebSocket string
}

// Register mounts the dashboard routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api handlers are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = DefaultBasePath
	}

	group := cfg.Router.Group(base)
	registerHTML(group, cfg, routes)
	registerAPI(group, cfg.API, routes)
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.API, cfg.Broadcast, routes.WebSocket)
	}
	cfg.Logger.Debug("eclipse routes registered", zap.String("base_path", base))
	return nil
}

func registerHTML[T any](r router.Router[T], cfg Config[T], routes RouteConfig) {
	r.Get(routes.Landing, router.WrapHandler(func(ctx router.Context) error {
		var snapshot eclipse.SessionSnapshot
		reqCtx := requestContext(ctx, "", routes.Landing)
		if err := cfg.API.StartSession.Execute(reqCtx, commands.StartSessionInput{Result: &snapshot}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return renderPage(ctx, reqCtx, cfg.Controller, snapshot.ID)
	}))

	r.Get(routes.Page, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		return renderPage(ctx, requestContext(ctx, id, routes.Page), cfg.Controller, id)
	}))

	forms := []struct {
		path   string
		action formAction
	}{
		{routes.Email, actionEmail},
		{routes.BusinessModel, actionBusinessModel},
		{routes.Metric, actionMetric},
		{routes.Back, actionBack},
		{routes.ChatOpen, actionChatOpen},
		{routes.ChatClose, actionChatClose},
		{routes.Chat, actionChatSend},
	}
	for _, form := range forms {
		path, action := form.path, form.action
		r.Post(path, router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("session")
			reqCtx := requestContext(ctx, id, path)
			err := applyFormAction(reqCtx, cfg.API, action, id, ctx.Param("metric"), parseForm(ctx.Body()))
			if err != nil && !pageRecoverable(err) {
				if httpapi.StatusFor(err) >= http.StatusInternalServerError {
					cfg.Logger.Error("form action failed", zap.String("action", string(action)), zap.Error(err))
				}
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return renderPage(ctx, reqCtx, cfg.Controller, id)
		}))
	}
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, routes RouteConfig) {
	r.Post(routes.Sessions, router.WrapHandler(func(ctx router.Context) error {
		var snapshot eclipse.SessionSnapshot
		if err := api.StartSession.Execute(requestContext(ctx, "", routes.Sessions), commands.StartSessionInput{Result: &snapshot}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusCreated, snapshot)
	}))

	r.Get(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("session")
		return respondSession(ctx, requestContext(ctx, id, routes.Session), api, id, http.StatusOK)
	}))

	r.Get(routes.Catalog, router.WrapHandler(func(ctx router.Context) error {
		metrics, err := api.Catalog.Query(ctx.Context(), queries.CatalogInput{View: eclipse.Category(ctx.Query("view"))})
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"metrics": metrics})
	}))

	r.Post(routes.APIEmail, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SubmitEmailInput
		if err := decodeBody(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = ctx.Param("session")
		reqCtx := requestContext(ctx, payload.SessionID, routes.APIEmail)
		if err := api.SubmitEmail.Execute(reqCtx, payload); err != nil {
			if !errors.Is(err, eclipse.ErrInvalidEmail) {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			snapshot, qerr := api.Session.Query(reqCtx, queries.SessionInput{SessionID: payload.SessionID})
			if qerr != nil {
				return respondError(ctx, httpapi.StatusFor(qerr), qerr)
			}
			return ctx.JSON(http.StatusUnprocessableEntity, map[string]any{
				"error":   eclipse.InvalidEmailMessage,
				"session": snapshot,
			})
		}
		return respondSession(ctx, reqCtx, api, payload.SessionID, http.StatusOK)
	}))

	r.Post(routes.APIInput, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.InputEmailInput
		if err := decodeBody(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = ctx.Param("session")
		reqCtx := requestContext(ctx, payload.SessionID, routes.APIInput)
		if err := api.InputEmail.Execute(reqCtx, payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondSession(ctx, reqCtx, api, payload.SessionID, http.StatusOK)
	}))

	r.Post(routes.APINavigate, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.NavigateInput
		if err := decodeBody(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = ctx.Param("session")
		reqCtx := requestContext(ctx, payload.SessionID, routes.APINavigate)
		if err := api.Navigate.Execute(reqCtx, payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondSession(ctx, reqCtx, api, payload.SessionID, http.StatusOK)
	}))

	r.Post(routes.APIToggle, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ToggleChatInput
		if err := decodeBody(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = ctx.Param("session")
		reqCtx := requestContext(ctx, payload.SessionID, routes.APIToggle)
		if err := api.ToggleChat.Execute(reqCtx, payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondSession(ctx, reqCtx, api, payload.SessionID, http.StatusOK)
	}))

	r.Post(routes.APIDraft, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ChatDraftInput
		if err := decodeBody(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = ctx.Param("session")
		reqCtx := requestContext(ctx, payload.SessionID, routes.APIDraft)
		if err := api.ChatDraft.Execute(reqCtx, payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return respondSession(ctx, reqCtx, api, payload.SessionID, http.StatusOK)
	}))

	r.Post(routes.APIChat, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SendChatInput
		if err := decodeBody(ctx.Body(), &payload); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.SessionID = ctx.Param("session")
		reqCtx := requestContext(ctx, payload.SessionID, routes.APIChat)
		if err := api.AllowChat(reqCtx, payload.SessionID); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		var sent bool
		payload.Sent = &sent
		if err := api.SendChat.Execute(reqCtx, payload); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		status := http.StatusAccepted
		if !sent {
			status = http.StatusOK
		}
		return respondSession(ctx, reqCtx, api, payload.SessionID, status)
	}))
}

func registerWebSocket[T any](r router.Router[T], api *httpapi.Handlers, hook *eclipse.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel, err := subscribeTranscript(ws.Context(), api, hook, ws.Query("session"))
		if err != nil {
			_ = ws.WriteJSON(map[string]string{"error": err.Error()})
			return ws.Close()
		}
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

// subscribeTranscript streams one existing session. The session id is the
// only credential, so a stream never carries another session's events.
func subscribeTranscript(ctx context.Context, api *httpapi.Handlers, hook *eclipse.BroadcastHook, sessionID string) (<-chan eclipse.TranscriptEvent, func(), error) {
	if sessionID == "" {
		return nil, nil, eclipse.ErrSessionRequired
	}
	if _, err := api.Session.Query(ctx, queries.SessionInput{SessionID: sessionID}); err != nil {
		return nil, nil, err
	}
	events, cancel := hook.Subscribe(sessionID)
	return events, cancel, nil
}

func renderPage(ctx router.Context, reqCtx context.Context, controller *eclipse.Controller, sessionID string) error {
	var buf bytes.Buffer
	if err := controller.RenderTemplate(reqCtx, sessionID, &buf); err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func respondSession(ctx router.Context, reqCtx context.Context, api *httpapi.Handlers, sessionID string, status int) error {
	snapshot, err := api.Session.Query(reqCtx, queries.SessionInput{SessionID: sessionID})
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(status, snapshot)
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func decodeBody(body []byte, target any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, target)
}

func requestContext(ctx router.Context, sessionID, route string) context.Context {
	return eclipse.ContextWithRequest(ctx.Context(), eclipse.RequestInfo{
		Path:      route,
		Referrer:  ctx.Header("Referer"),
		UserAgent: ctx.Header("User-Agent"),
		SessionID: sessionID,
	})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	set := func(field *string, value string) {
		if strings.TrimSpace(*field) == "" {
			*field = value
		}
	}
	set(&routes.Landing, "/")
	set(&routes.Page, "/s/:session")
	set(&routes.Email, "/s/:session/email")
	set(&routes.BusinessModel, "/s/:session/business-model")
	set(&routes.Metric, "/s/:session/metrics/:metric")
	set(&routes.Back, "/s/:session/back")
	set(&routes.ChatOpen, "/s/:session/chat/open")
	set(&routes.ChatClose, "/s/:session/chat/close")
	set(&routes.Chat, "/s/:session/chat")
	set(&routes.Sessions, "/api/sessions")
	set(&routes.Session, "/api/sessions/:session")
	set(&routes.APIEmail, "/api/sessions/:session/email")
	set(&routes.APIInput, "/api/sessions/:session/email/input")
	set(&routes.APINavigate, "/api/sessions/:session/navigate")
	set(&routes.APIChat, "/api/sessions/:session/chat")
	set(&routes.APIDraft, "/api/sessions/:session/chat/input")
	set(&routes.APIToggle, "/api/sessions/:session/chat/toggle")
	set(&routes.Catalog, "/api/catalog")
	set(&routes.WebSocket, "/ws")
	return routes
}
