package eclipse

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	// LandingTemplate renders the email gate.
	LandingTemplate = "landing.html"
	// DashboardTemplate renders every dashboard view.
	DashboardTemplate = "dashboard.html"

	landingHeading    = "Welcome, Eminence"
	landingSubheading = "Enter your email to access the dashboard"
	chatHeading       = "Eclipse AI - Éminence Advisor"
	progressSubtitle  = "Progress to target (%)"
)

var errMissingRenderer = errors.New("eclipse: renderer not configured")

// PageSource is the part of the service the controller reads from.
type PageSource interface {
	Snapshot(ctx context.Context, id string) (SessionSnapshot, error)
	Catalog() *Catalog
	RecordPageView(ctx context.Context, snapshot SessionSnapshot)
}

// ControllerOptions wires the controller collaborators.
type ControllerOptions struct {
	Service  PageSource
	Renderer Renderer
	Charts   ChartRenderer
	BasePath string
	Logger   *zap.Logger
}

// Controller turns session snapshots into rendered pages.
type Controller struct {
	service  PageSource
	renderer Renderer
	charts   ChartRenderer
	basePath string
	logger   *zap.Logger
}

// NewController wires the service into a controller.
func NewController(opts ControllerOptions) *Controller {
	if opts.Charts == nil {
		opts.Charts = NewProgressChart()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		service:  opts.Service,
		renderer: opts.Renderer,
		charts:   opts.Charts,
		basePath: strings.TrimRight(opts.BasePath, "/"),
		logger:   opts.Logger,
	}
}

// RenderTemplate renders the current page of a session into out.
func (c *Controller) RenderTemplate(ctx context.Context, sessionID string, out io.Writer) error {
	if c.renderer == nil {
		return errMissingRenderer
	}
	snapshot, err := c.service.Snapshot(ctx, sessionID)
	if err != nil {
		return err
	}
	name, data := c.ViewModel(snapshot)
	if _, err := c.renderer.Render(name, data, out); err != nil {
		return err
	}
	c.service.RecordPageView(ctx, snapshot)
	return nil
}

// ViewModel selects the template for the snapshot and builds its data.
func (c *Controller) ViewModel(snapshot SessionSnapshot) (string, map[string]any) {
	if snapshot.Page != PageDashboard {
		return LandingTemplate, c.landingModel(snapshot)
	}
	return DashboardTemplate, c.dashboardModel(snapshot)
}

func (c *Controller) landingModel(snapshot SessionSnapshot) map[string]any {
	gate := snapshot.Gate
	validity := "unknown"
	message := ""
	if gate.EmailValid != nil {
		if *gate.EmailValid {
			validity = "valid"
			message = ValidEmailMessage
		} else {
			validity = "invalid"
			message = InvalidEmailMessage
		}
	}
	return map[string]any{
		"base_path":     c.basePath,
		"session_id":    snapshot.ID,
		"heading":       landingHeading,
		"subheading":    landingSubheading,
		"email":         gate.Email,
		"validity":      validity,
		"message":       message,
		"can_submit":    gate.CanSubmit,
		"is_submitting": gate.IsSubmitting,
	}
}

func (c *Controller) dashboardModel(snapshot SessionSnapshot) map[string]any {
	view := snapshot.CurrentView
	data := map[string]any{
		"base_path":   c.basePath,
		"session_id":  snapshot.ID,
		"title":       DashboardTitle,
		"subtitle":    DashboardSubtitle,
		"bcorp_score": BCorpScore,
		"user_email":  snapshot.UserEmail,
		"view":        string(view),
		"view_title":  view.Title(),
		"chat":        chatModel(snapshot.Chat),
	}
	catalog := c.service.Catalog()

	switch view.Kind() {
	case ViewKindOverview:
		data["view_kind"] = "overview"
		data["cards"] = cardModels(catalog.Metrics())
		data["priority_actions"] = PriorityActions()
		data["sustainability"] = SustainabilityHighlights()
	case ViewKindBusinessModel:
		data["view_kind"] = "business-model"
		data["canvas_title"] = CanvasTitle
		data["canvas"] = CanvasBlocks()
		data["highlights"] = CanvasHighlights()
	default:
		category, _ := view.Category()
		metrics := catalog.ForView(category)
		data["view_kind"] = "category"
		data["cards"] = cardModels(metrics)
		data["insights"] = category.Insights()
		data["chart_subtitle"] = progressSubtitle
		if len(metrics) > 0 {
			chart, err := c.charts.RenderProgress(category, metrics)
			if err != nil {
				c.logger.Warn("progress chart failed", zap.String("view", string(view)), zap.Error(err))
			} else {
				data["chart"] = chart
			}
		}
	}
	return data
}

func cardModels(metrics []Metric) []map[string]any {
	cards := make([]map[string]any, 0, len(metrics))
	for _, m := range metrics {
		cards = append(cards, map[string]any{
			"id":       m.ID,
			"title":    m.Title,
			"value":    m.Value,
			"status":   string(m.Status),
			"glyph":    m.Status.Glyph(),
			"progress": clampProgress(m.Progress),
			"target":   FormatTarget(m.Target),
			"details":  m.Details,
			"trend":    m.Trend,
			"view":     string(m.View),
		})
	}
	return cards
}

func chatModel(chat ChatState) map[string]any {
	messages := make([]map[string]any, 0, len(chat.Messages))
	for _, msg := range chat.Messages {
		messages = append(messages, map[string]any{
			"role":    string(msg.Role),
			"content": msg.Content,
		})
	}
	return map[string]any{
		"open":        chat.Open,
		"heading":     chatHeading,
		"input":       chat.Input,
		"placeholder": ChatPlaceholder,
		"messages":    messages,
		"pending":     chat.Pending > 0,
	}
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
