package gorouter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
	"github.com/goliatone/go-eclipse/components/eclipse/commands"
	"github.com/goliatone/go-eclipse/components/eclipse/httpapi"
)

// formAction identifies an HTML form post.
type formAction string

const (
	actionEmail         formAction = "email"
	actionBusinessModel formAction = "business-model"
	actionMetric        formAction = "metric"
	actionBack          formAction = "back"
	actionChatOpen      formAction = "chat-open"
	actionChatClose     formAction = "chat-close"
	actionChatSend      formAction = "chat-send"
)

var errUnknownFormAction = errors.New("gorouter: unknown form action")

// applyFormAction runs a browser form post against the shared commands.
func applyFormAction(ctx context.Context, api *httpapi.Handlers, action formAction, sessionID, metricID string, form url.Values) error {
	switch action {
	case actionEmail:
		return api.SubmitEmail.Execute(ctx, commands.SubmitEmailInput{SessionID: sessionID, Email: form.Get("email")})
	case actionBusinessModel:
		return api.Navigate.Execute(ctx, commands.NavigateInput{SessionID: sessionID, Action: commands.ActionBusinessModel})
	case actionMetric:
		return api.Navigate.Execute(ctx, commands.NavigateInput{SessionID: sessionID, Action: commands.ActionMetric, MetricID: metricID})
	case actionBack:
		return api.Navigate.Execute(ctx, commands.NavigateInput{SessionID: sessionID, Action: commands.ActionBack})
	case actionChatOpen, actionChatClose:
		return api.ToggleChat.Execute(ctx, commands.ToggleChatInput{SessionID: sessionID, Open: action == actionChatOpen})
	case actionChatSend:
		if err := api.AllowChat(ctx, sessionID); err != nil {
			return err
		}
		return api.SendChat.Execute(ctx, commands.SendChatInput{SessionID: sessionID, Message: form.Get("message")})
	}
	return fmt.Errorf("%w: %s", errUnknownFormAction, action)
}

// pageRecoverable reports whether the page should simply be re-rendered.
// Stale buttons, bad emails and throttled chat all fall back to the current page.
func pageRecoverable(err error) bool {
	return errors.Is(err, eclipse.ErrInvalidEmail) ||
		errors.Is(err, eclipse.ErrInvalidTransition) ||
		errors.Is(err, eclipse.ErrGateLocked) ||
		errors.Is(err, eclipse.ErrUnknownMetric) ||
		errors.Is(err, httpapi.ErrRateLimited)
}

// parseForm decodes an application/x-www-form-urlencoded body.
func parseForm(body []byte) url.Values {
	values, err := url.ParseQuery(strings.TrimSpace(string(body)))
	if err != nil {
		return url.Values{}
	}
	return values
}
