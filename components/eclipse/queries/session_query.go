package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

// SessionInput identifies the session to read.
type SessionInput struct {
	SessionID string
}

type sessionService interface {
	Snapshot(ctx context.Context, id string) (eclipse.SessionSnapshot, error)
}

// SessionQuery returns a consistent copy of a session.
type SessionQuery struct {
	service sessionService
}

// NewSessionQuery builds the query.
func NewSessionQuery(service sessionService) *SessionQuery {
	return &SessionQuery{service: service}
}

var _ gocommand.Querier[SessionInput, eclipse.SessionSnapshot] = (*SessionQuery)(nil)

// Query reads the session snapshot.
func (q *SessionQuery) Query(ctx context.Context, input SessionInput) (eclipse.SessionSnapshot, error) {
	return q.service.Snapshot(ctx, input.SessionID)
}
