package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

// Navigation actions understood by NavigateCommand.
const (
	ActionBusinessModel = "business-model"
	ActionMetric        = "metric"
	ActionBack          = "back"
)

// ErrUnknownAction is returned for navigation actions outside the known set.
var ErrUnknownAction = errors.New("commands: unknown navigation action")

// NavigateInput moves a session between dashboard views.
type NavigateInput struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"`
	MetricID  string `json:"metric_id,omitempty"`
}

type navigationService interface {
	OpenBusinessModel(ctx context.Context, id string) (eclipse.SessionSnapshot, error)
	SelectMetric(ctx context.Context, id, metricID string) (eclipse.SessionSnapshot, error)
	Back(ctx context.Context, id string) (eclipse.SessionSnapshot, error)
}

// NavigateCommand applies a view transition.
type NavigateCommand struct {
	service navigationService
}

// NewNavigateCommand creates the command.
func NewNavigateCommand(service navigationService) *NavigateCommand {
	return &NavigateCommand{service: service}
}

var _ gocommand.Commander[NavigateInput] = (*NavigateCommand)(nil)

// Execute dispatches on the action.
func (c *NavigateCommand) Execute(ctx context.Context, msg NavigateInput) error {
	if c.service == nil {
		return errMissingService
	}
	var err error
	switch msg.Action {
	case ActionBusinessModel:
		_, err = c.service.OpenBusinessModel(ctx, msg.SessionID)
	case ActionMetric:
		_, err = c.service.SelectMetric(ctx, msg.SessionID, msg.MetricID)
	case ActionBack:
		_, err = c.service.Back(ctx, msg.SessionID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	return err
}
