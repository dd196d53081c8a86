package eclipse

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// ChartRenderer produces the progress chart embedded in a category view.
type ChartRenderer interface {
	RenderProgress(category Category, metrics []Metric) (string, error)
}

// ProgressChart renders server-side go-echarts bar charts of metric progress.
// The catalog never changes, so output is memoized per category.
type ProgressChart struct {
	theme      string
	assetsHost string

	mu   sync.Mutex
	memo map[Category]string
}

// ProgressChartOption customizes chart rendering.
type ProgressChartOption func(*ProgressChart)

// WithChartTheme sets the echarts theme (defaults to Westeros).
func WithChartTheme(theme string) ProgressChartOption {
	return func(c *ProgressChart) {
		c.theme = theme
	}
}

// WithChartAssetsHost rewrites the host the echarts JS is loaded from.
func WithChartAssetsHost(host string) ProgressChartOption {
	return func(c *ProgressChart) {
		c.assetsHost = host
	}
}

// NewProgressChart builds a chart renderer.
func NewProgressChart(options ...ProgressChartOption) *ProgressChart {
	c := &ProgressChart{
		theme: types.ThemeWesteros,
		memo:  map[Category]string{},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// RenderProgress returns chart markup plotting each metric's progress percentage.
func (c *ProgressChart) RenderProgress(category Category, metrics []Metric) (string, error) {
	if len(metrics) == 0 {
		return "", fmt.Errorf("eclipse: no metrics to chart for %q", category)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if html, ok := c.memo[category]; ok {
		return html, nil
	}

	titles := make([]string, len(metrics))
	data := make([]opts.BarData, len(metrics))
	for i, m := range metrics {
		titles[i] = m.Title
		data[i] = opts.BarData{Name: m.Title, Value: m.Progress}
	}

	initOpts := opts.Initialization{
		Theme:   c.theme,
		Width:   "100%",
		Height:  defaultChartHeight,
		ChartID: "progress_" + chartID(category),
	}
	if c.assetsHost != "" {
		initOpts.AssetsHost = c.assetsHost
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{Title: category.Title(), Subtitle: progressSubtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
	)
	bar.SetXAxis(titles).AddSeries("Progress", data)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("eclipse: render chart %q: %w", category, err)
	}
	html := buf.String()
	c.memo[category] = html
	return html, nil
}

func chartID(category Category) string {
	replacer := strings.NewReplacer("-", "_", " ", "_", ".", "_")
	return replacer.Replace(strings.ToLower(string(category)))
}
