package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

var errMissingService = errors.New("commands: service is required")

// StartSessionInput requests a new visitor session. Result receives the
// snapshot of the created session when non-nil.
type StartSessionInput struct {
	Result *eclipse.SessionSnapshot
}

type sessionStarter interface {
	StartSession(ctx context.Context) (eclipse.SessionSnapshot, error)
}

// StartSessionCommand creates sessions on the landing page.
type StartSessionCommand struct {
	service sessionStarter
}

// NewStartSessionCommand creates a command instance.
func NewStartSessionCommand(service sessionStarter) *StartSessionCommand {
	return &StartSessionCommand{service: service}
}

var _ gocommand.Commander[StartSessionInput] = (*StartSessionCommand)(nil)

// Execute delegates to the eclipse service.
func (c *StartSessionCommand) Execute(ctx context.Context, msg StartSessionInput) error {
	if c.service == nil {
		return errMissingService
	}
	snapshot, err := c.service.StartSession(ctx)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = snapshot
	}
	return nil
}
