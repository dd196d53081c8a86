package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

// InputEmailInput carries a landing-form keystroke.
type InputEmailInput struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

// SubmitEmailInput carries a landing-form submission.
type SubmitEmailInput struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email"`
}

type emailService interface {
	InputEmail(ctx context.Context, id, value string) (eclipse.GateState, error)
	SubmitEmail(ctx context.Context, id, value string) (eclipse.SessionSnapshot, error)
}

// InputEmailCommand updates the landing form draft and its validity.
type InputEmailCommand struct {
	service emailService
}

// NewInputEmailCommand creates the command.
func NewInputEmailCommand(service emailService) *InputEmailCommand {
	return &InputEmailCommand{service: service}
}

var _ gocommand.Commander[InputEmailInput] = (*InputEmailCommand)(nil)

// Execute records the keystroke.
func (c *InputEmailCommand) Execute(ctx context.Context, msg InputEmailInput) error {
	if c.service == nil {
		return errMissingService
	}
	_, err := c.service.InputEmail(ctx, msg.SessionID, msg.Email)
	return err
}

// SubmitEmailCommand unlocks the dashboard when the email is valid.
type SubmitEmailCommand struct {
	service emailService
}

// NewSubmitEmailCommand creates the command.
func NewSubmitEmailCommand(service emailService) *SubmitEmailCommand {
	return &SubmitEmailCommand{service: service}
}

var _ gocommand.Commander[SubmitEmailInput] = (*SubmitEmailCommand)(nil)

// Execute submits the email. Invalid input surfaces as eclipse.ErrInvalidEmail.
func (c *SubmitEmailCommand) Execute(ctx context.Context, msg SubmitEmailInput) error {
	if c.service == nil {
		return errMissingService
	}
	_, err := c.service.SubmitEmail(ctx, msg.SessionID, msg.Email)
	return err
}
