// Package eclipse re-exports the dashboard service for applications that
// embed it without reaching into components/.
package eclipse

import (
	core "github.com/goliatone/go-eclipse/components/eclipse"
)

// Service exposes the underlying components/eclipse.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// SessionSnapshot is the read-only view of a visitor session.
type SessionSnapshot = core.SessionSnapshot

// Telemetry is the analytics collaborator.
type Telemetry = core.Telemetry

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// ControllerOptions re-export for convenience.
type ControllerOptions = core.ControllerOptions

// NewController proxies to the page controller constructor.
func NewController(opts ControllerOptions) *core.Controller {
	return core.NewController(opts)
}
