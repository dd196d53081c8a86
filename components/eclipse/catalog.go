package eclipse

import "strings"

// Category is the closed set of metric groupings that back the detail views.
// Keys outside the set are kept verbatim and treated as the unknown variant.
type Category string

const (
	CategoryPartners       Category = "partners"
	CategoryRevenue        Category = "revenue"
	CategorySustainability Category = "sustainability"
	CategoryProducts       Category = "products"
	CategoryCustomers      Category = "customers"
	CategoryOperations     Category = "operations"
	CategoryExpansion      Category = "expansion"
	CategorySocial         Category = "social"
	CategoryMarketing      Category = "marketing"
)

var categoryTitles = map[Category]string{
	CategoryPartners:       "Spa Partner Performance",
	CategoryRevenue:        "Revenue Analytics",
	CategorySustainability: "Sustainability Metrics",
	CategoryProducts:       "Product Portfolio",
	CategoryCustomers:      "Customer Insights",
	CategoryOperations:     "Operations Excellence",
	CategoryExpansion:      "Global Expansion",
	CategorySocial:         "Social Impact",
	CategoryMarketing:      "Marketing Performance",
}

// Known reports whether the category belongs to the closed set.
func (c Category) Known() bool {
	_, ok := categoryTitles[c]
	return ok
}

// Title returns the detail view heading, or the raw key for unknown categories.
func (c Category) Title() string {
	if title, ok := categoryTitles[c]; ok {
		return title
	}
	return string(c)
}

// Insights returns the templated footer lines of a detail view.
func (c Category) Insights() []string {
	return []string{
		"Strong performance in " + string(c) + " with most metrics exceeding targets",
		"Focus areas identified for improvement in Q2",
		"Sustainable growth trajectory maintained across all KPIs",
	}
}

// Catalog is the immutable, ordered metric dataset. Accessors return copies.
type Catalog struct {
	metrics []Metric
	index   map[string]int
}

// NewCatalog freezes the provided metrics in the given order.
func NewCatalog(metrics []Metric) *Catalog {
	c := &Catalog{
		metrics: append([]Metric(nil), metrics...),
		index:   make(map[string]int, len(metrics)),
	}
	for i, m := range c.metrics {
		if _, exists := c.index[m.ID]; !exists {
			c.index[m.ID] = i
		}
	}
	return c
}

// DefaultCatalog returns the built-in Éminence Organics dataset.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultMetrics())
}

// Len returns the number of metrics.
func (c *Catalog) Len() int {
	return len(c.metrics)
}

// Metrics returns every metric in catalog order.
func (c *Catalog) Metrics() []Metric {
	return append([]Metric(nil), c.metrics...)
}

// Metric looks up a metric by id.
func (c *Catalog) Metric(id string) (Metric, bool) {
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Metric{}, false
	}
	return c.metrics[idx], true
}

// ForView returns the metrics whose view equals the key, in catalog order.
func (c *Catalog) ForView(view Category) []Metric {
	var out []Metric
	for _, m := range c.metrics {
		if m.View == view {
			out = append(out, m)
		}
	}
	return out
}

// Categories returns the distinct view keys in order of first appearance.
func (c *Catalog) Categories() []Category {
	seen := map[Category]struct{}{}
	var out []Category
	for _, m := range c.metrics {
		if _, ok := seen[m.View]; ok {
			continue
		}
		seen[m.View] = struct{}{}
		out = append(out, m.View)
	}
	return out
}

// HasCategory reports whether any metric is grouped under the key.
func (c *Catalog) HasCategory(view Category) bool {
	for _, m := range c.metrics {
		if m.View == view {
			return true
		}
	}
	return false
}

// DefaultMetrics returns a fresh copy of the built-in metrics.
func DefaultMetrics() []Metric {
	return []Metric{
		{ID: "spa-partners", Title: "Active Spa Partners", Value: "2,847", Status: StatusGreen, Progress: 87, Target: 3000,
			Details: "Professional spa partnerships across North America", Trend: "+12% QoQ", View: CategoryPartners},
		{ID: "organic-revenue", Title: "Organic Product Revenue", Value: "$42.3M", Status: StatusGreen, Progress: 92, Target: 45000000,
			Details: "YTD revenue from certified organic product lines", Trend: "+18% YoY", View: CategoryRevenue},
		{ID: "sustainability-score", Title: "Sustainability Score", Value: "94/100", Status: StatusGreen, Progress: 94, Target: 100,
			Details: "B-Corp certification metrics and environmental impact", Trend: "+3 points", View: CategorySustainability},
		{ID: "product-lines", Title: "Active Product Lines", Value: "12", Status: StatusGreen, Progress: 100, Target: 12,
			Details: "Specialized collections for different skin concerns", Trend: "Stable", View: CategoryProducts},
		{ID: "spa-retention", Title: "Spa Partner Retention", Value: "91%", Status: StatusGreen, Progress: 91, Target: 95,
			Details: "Annual retention rate for professional partners", Trend: "+2% YoY", View: CategoryPartners},
		{ID: "online-sales", Title: "E-commerce Growth", Value: "+34%", Status: StatusGreen, Progress: 85, Target: 40,
			Details: "YoY growth in direct-to-consumer online sales", Trend: "Accelerating", View: CategoryRevenue},
		{ID: "trees-planted", Title: "Trees Planted", Value: "23.8M", Status: StatusGreen, Progress: 79, Target: 30000000,
			Details: "Forests for the Future™ program lifetime impact", Trend: "+2.1M YTD", View: CategorySustainability},
		{ID: "product-certification", Title: "Certified Organic Products", Value: "89%", Status: StatusYellow, Progress: 89, Target: 95,
			Details: "Percentage of products with USDA organic certification", Trend: "+4% YTD", View: CategoryProducts},
		{ID: "customer-satisfaction", Title: "Customer Satisfaction", Value: "4.7/5", Status: StatusGreen, Progress: 94, Target: 100,
			Details: "Average rating across all channels and products", Trend: "Stable", View: CategoryCustomers},
		{ID: "inventory-turnover", Title: "Inventory Turnover", Value: "8.2x", Status: StatusYellow, Progress: 82, Target: 10,
			Details: "Annual inventory turnover rate", Trend: "+0.5x QoQ", View: CategoryOperations},
		{ID: "spa-education", Title: "Partners Trained", Value: "4,239", Status: StatusGreen, Progress: 88, Target: 5000,
			Details: "Estheticians completed online education programs", Trend: "+523 MTD", View: CategoryPartners},
		{ID: "new-product-success", Title: "NPD Success Rate", Value: "78%", Status: StatusYellow, Progress: 78, Target: 85,
			Details: "New products meeting first-year revenue targets", Trend: "+5% YoY", View: CategoryProducts},
		{ID: "global-reach", Title: "International Markets", Value: "38", Status: StatusGreen, Progress: 95, Target: 40,
			Details: "Countries with active distribution", Trend: "+3 YTD", View: CategoryExpansion},
		{ID: "ingredient-sourcing", Title: "Biodynamic Ingredients", Value: "67%", Status: StatusYellow, Progress: 67, Target: 80,
			Details: "Ingredients from certified biodynamic farms", Trend: "+8% YoY", View: CategorySustainability},
		{ID: "social-impact", Title: "Kids Foundation Impact", Value: "$2.3M", Status: StatusGreen, Progress: 92, Target: 2500000,
			Details: "Funds raised for seriously ill children", Trend: "+$430K YTD", View: CategorySocial},
		{ID: "marketing-roi", Title: "Marketing ROI", Value: "5.8:1", Status: StatusGreen, Progress: 87, Target: 6,
			Details: "Return on marketing investment", Trend: "+0.6 QoQ", View: CategoryMarketing},
	}
}
