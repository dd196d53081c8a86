package eclipse

import (
	"errors"
	"fmt"
)

// ViewKey selects the dashboard panel: overview, business-model, or a category key.
type ViewKey string

const (
	ViewOverview      ViewKey = "overview"
	ViewBusinessModel ViewKey = "business-model"
)

// ViewKind is the variant of a ViewKey.
type ViewKind int

const (
	ViewKindOverview ViewKind = iota
	ViewKindBusinessModel
	ViewKindCategory
)

// Kind classifies the view key.
func (v ViewKey) Kind() ViewKind {
	switch v {
	case ViewOverview, "":
		return ViewKindOverview
	case ViewBusinessModel:
		return ViewKindBusinessModel
	}
	return ViewKindCategory
}

// Category returns the category a detail view is bound to.
func (v ViewKey) Category() (Category, bool) {
	if v.Kind() != ViewKindCategory {
		return "", false
	}
	return Category(v), true
}

// Title returns the heading for the view.
func (v ViewKey) Title() string {
	switch v.Kind() {
	case ViewKindOverview:
		return DashboardTitle
	case ViewKindBusinessModel:
		return CanvasTitle
	}
	return Category(v).Title()
}

// ErrInvalidTransition is returned for navigation the state machine does not allow.
var ErrInvalidTransition = errors.New("eclipse: invalid view transition")

// Navigator is the dashboard view state machine. It has no back-stack:
// every detail screen returns to the overview.
type Navigator struct {
	current ViewKey
}

// NewNavigator starts at the overview.
func NewNavigator() Navigator {
	return Navigator{current: ViewOverview}
}

// Current returns the active view.
func (n *Navigator) Current() ViewKey {
	if n.current == "" {
		return ViewOverview
	}
	return n.current
}

// OpenBusinessModel moves overview -> business-model.
func (n *Navigator) OpenBusinessModel() error {
	if n.Current().Kind() != ViewKindOverview {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Current(), ViewBusinessModel)
	}
	n.current = ViewBusinessModel
	return nil
}

// SelectMetric moves to the metric's category. Cards exist on the overview and
// on the detail view of their own category, so those are the only sources.
func (n *Navigator) SelectMetric(metric Metric) error {
	target := ViewKey(metric.View)
	switch n.Current().Kind() {
	case ViewKindOverview:
	case ViewKindCategory:
		if n.Current() != target {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Current(), target)
		}
	default:
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, n.Current(), target)
	}
	if target.Kind() != ViewKindCategory {
		return fmt.Errorf("%w: metric %s has reserved view %q", ErrInvalidTransition, metric.ID, metric.View)
	}
	n.current = target
	return nil
}

// Back returns to the overview and reports the view it left.
func (n *Navigator) Back() (ViewKey, error) {
	from := n.Current()
	if from.Kind() == ViewKindOverview {
		return from, fmt.Errorf("%w: already on %s", ErrInvalidTransition, ViewOverview)
	}
	n.current = ViewOverview
	return from, nil
}
