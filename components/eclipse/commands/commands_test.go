package commands

import (
	"context"
	"errors"
	"testing"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

func TestStartSessionCommand(t *testing.T) {
	service := eclipse.NewService(eclipse.Options{})
	var snapshot eclipse.SessionSnapshot
	cmd := NewStartSessionCommand(service)
	if err := cmd.Execute(context.Background(), StartSessionInput{Result: &snapshot}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if snapshot.ID == "" || snapshot.Page != eclipse.PageLanding {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}
}

func TestEmailCommands(t *testing.T) {
	service := eclipse.NewService(eclipse.Options{})
	id := startSession(t, service)
	ctx := context.Background()

	if err := NewInputEmailCommand(service).Execute(ctx, InputEmailInput{SessionID: id, Email: "jane@"}); err != nil {
		t.Fatalf("InputEmail returned error: %v", err)
	}
	err := NewSubmitEmailCommand(service).Execute(ctx, SubmitEmailInput{SessionID: id, Email: "jane@"})
	if !errors.Is(err, eclipse.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := NewSubmitEmailCommand(service).Execute(ctx, SubmitEmailInput{SessionID: id, Email: "jane@spa.com"}); err != nil {
		t.Fatalf("SubmitEmail returned error: %v", err)
	}
	snapshot, _ := service.Snapshot(ctx, id)
	if snapshot.Page != eclipse.PageDashboard {
		t.Fatalf("expected dashboard page, got %s", snapshot.Page)
	}
}

func TestNavigateCommand(t *testing.T) {
	service := eclipse.NewService(eclipse.Options{})
	id := unlockedSession(t, service)
	cmd := NewNavigateCommand(service)
	ctx := context.Background()

	steps := []struct {
		input NavigateInput
		view  eclipse.ViewKey
	}{
		{NavigateInput{SessionID: id, Action: ActionMetric, MetricID: "online-sales"}, eclipse.ViewKey(eclipse.CategoryRevenue)},
		{NavigateInput{SessionID: id, Action: ActionBack}, eclipse.ViewOverview},
		{NavigateInput{SessionID: id, Action: ActionBusinessModel}, eclipse.ViewBusinessModel},
		{NavigateInput{SessionID: id, Action: ActionBack}, eclipse.ViewOverview},
	}
	for _, step := range steps {
		if err := cmd.Execute(ctx, step.input); err != nil {
			t.Fatalf("Execute(%+v) returned error: %v", step.input, err)
		}
		snapshot, _ := service.Snapshot(ctx, id)
		if snapshot.CurrentView != step.view {
			t.Fatalf("expected view %s after %s, got %s", step.view, step.input.Action, snapshot.CurrentView)
		}
	}

	if err := cmd.Execute(ctx, NavigateInput{SessionID: id, Action: "sideways"}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
	if err := cmd.Execute(ctx, NavigateInput{SessionID: id, Action: ActionBack}); !errors.Is(err, eclipse.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestChatCommands(t *testing.T) {
	scheduler := eclipse.NewManualScheduler()
	service := eclipse.NewService(eclipse.Options{Scheduler: scheduler})
	id := unlockedSession(t, service)
	ctx := context.Background()

	if err := NewToggleChatCommand(service).Execute(ctx, ToggleChatInput{SessionID: id, Open: true}); err != nil {
		t.Fatalf("ToggleChat returned error: %v", err)
	}
	if err := NewUpdateChatDraftCommand(service).Execute(ctx, ChatDraftInput{SessionID: id, Draft: "draft"}); err != nil {
		t.Fatalf("UpdateChatDraft returned error: %v", err)
	}
	var sent bool
	if err := NewSendChatCommand(service).Execute(ctx, SendChatInput{SessionID: id, Message: "Hello", Sent: &sent}); err != nil {
		t.Fatalf("SendChat returned error: %v", err)
	}
	if !sent {
		t.Fatalf("expected message to be sent")
	}
	scheduler.Advance(eclipse.DefaultReplyDelay)

	snapshot, _ := service.Snapshot(ctx, id)
	if !snapshot.Chat.Open || len(snapshot.Chat.Messages) != 3 {
		t.Fatalf("unexpected chat state %+v", snapshot.Chat)
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	checks := []error{
		NewStartSessionCommand(nil).Execute(ctx, StartSessionInput{}),
		NewInputEmailCommand(nil).Execute(ctx, InputEmailInput{}),
		NewSubmitEmailCommand(nil).Execute(ctx, SubmitEmailInput{}),
		NewNavigateCommand(nil).Execute(ctx, NavigateInput{}),
		NewToggleChatCommand(nil).Execute(ctx, ToggleChatInput{}),
		NewUpdateChatDraftCommand(nil).Execute(ctx, ChatDraftInput{}),
		NewSendChatCommand(nil).Execute(ctx, SendChatInput{}),
	}
	for i, err := range checks {
		if !errors.Is(err, errMissingService) {
			t.Fatalf("check %d: expected errMissingService, got %v", i, err)
		}
	}
}

func TestCommandsPropagateUnknownSession(t *testing.T) {
	service := eclipse.NewService(eclipse.Options{})
	err := NewToggleChatCommand(service).Execute(context.Background(), ToggleChatInput{SessionID: "missing"})
	if !errors.Is(err, eclipse.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

// --- Test helpers ---

func startSession(t *testing.T, service *eclipse.Service) string {
	t.Helper()
	snapshot, err := service.StartSession(context.Background())
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	return snapshot.ID
}

func unlockedSession(t *testing.T, service *eclipse.Service) string {
	t.Helper()
	id := startSession(t, service)
	if _, err := service.SubmitEmail(context.Background(), id, "jane@spa.com"); err != nil {
		t.Fatalf("SubmitEmail returned error: %v", err)
	}
	return id
}
