package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

// ToggleChatInput opens or closes the chat panel.
type ToggleChatInput struct {
	SessionID string `json:"session_id"`
	Open      bool   `json:"open"`
}

// ChatDraftInput stores the chat input without sending it.
type ChatDraftInput struct {
	SessionID string `json:"session_id"`
	Draft     string `json:"draft"`
}

// SendChatInput sends a chat message. Sent reports whether the message was
// accepted when non-nil; blank messages are ignored.
type SendChatInput struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Sent      *bool  `json:"-"`
}

type chatService interface {
	SetChatOpen(ctx context.Context, id string, open bool) (eclipse.SessionSnapshot, error)
	UpdateChatInput(ctx context.Context, id, draft string) (eclipse.SessionSnapshot, error)
	SendChatMessage(ctx context.Context, id, draft string) (eclipse.SessionSnapshot, bool, error)
}

// ToggleChatCommand opens or closes the chat panel.
type ToggleChatCommand struct {
	service chatService
}

// NewToggleChatCommand creates the command.
func NewToggleChatCommand(service chatService) *ToggleChatCommand {
	return &ToggleChatCommand{service: service}
}

var _ gocommand.Commander[ToggleChatInput] = (*ToggleChatCommand)(nil)

// Execute toggles the panel.
func (c *ToggleChatCommand) Execute(ctx context.Context, msg ToggleChatInput) error {
	if c.service == nil {
		return errMissingService
	}
	_, err := c.service.SetChatOpen(ctx, msg.SessionID, msg.Open)
	return err
}

// UpdateChatDraftCommand stores the chat draft.
type UpdateChatDraftCommand struct {
	service chatService
}

// NewUpdateChatDraftCommand creates the command.
func NewUpdateChatDraftCommand(service chatService) *UpdateChatDraftCommand {
	return &UpdateChatDraftCommand{service: service}
}

var _ gocommand.Commander[ChatDraftInput] = (*UpdateChatDraftCommand)(nil)

// Execute stores the draft.
func (c *UpdateChatDraftCommand) Execute(ctx context.Context, msg ChatDraftInput) error {
	if c.service == nil {
		return errMissingService
	}
	_, err := c.service.UpdateChatInput(ctx, msg.SessionID, msg.Draft)
	return err
}

// SendChatCommand sends a chat message and schedules the scripted reply.
type SendChatCommand struct {
	service chatService
}

// NewSendChatCommand creates the command.
func NewSendChatCommand(service chatService) *SendChatCommand {
	return &SendChatCommand{service: service}
}

var _ gocommand.Commander[SendChatInput] = (*SendChatCommand)(nil)

// Execute sends the message.
func (c *SendChatCommand) Execute(ctx context.Context, msg SendChatInput) error {
	if c.service == nil {
		return errMissingService
	}
	_, sent, err := c.service.SendChatMessage(ctx, msg.SessionID, msg.Message)
	if msg.Sent != nil {
		*msg.Sent = sent
	}
	return err
}
