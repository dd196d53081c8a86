package eclipse

// CanvasBlock is one cell of the business model canvas.
type CanvasBlock struct {
	Code  string   `json:"code"`
	Title string   `json:"title"`
	Icon  string   `json:"icon,omitempty"`
	Tone  string   `json:"tone"`
	Span  int      `json:"span"`
	Items []string `json:"items"`
}

// Highlight is a titled callout rendered under the canvas.
type Highlight struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tone  string `json:"tone"`
}

// PriorityAction is an entry of the overview "Priority Actions" panel.
type PriorityAction struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Tone   string `json:"tone"`
}

// SustainabilityStat is a label/value row of the overview sustainability panel.
type SustainabilityStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

const (
	// DashboardTitle is the heading shown on every dashboard view.
	DashboardTitle = "Éminence Organics Eclipse Dashboard"
	// DashboardSubtitle sits under the heading.
	DashboardSubtitle = "Organic Skincare Performance Metrics"
	// BCorpScore is the headline score shown in the header.
	BCorpScore = "94/100"
	// CanvasTitle heads the business-model view.
	CanvasTitle = "Business Model Canvas - Éminence Organics"
)

var defaultCanvasBlocks = []CanvasBlock{
	{Code: "key-partners", Title: "Key Partners", Icon: "users", Tone: "green", Span: 1, Items: []string{
		"Professional spas & salons", "Organic farmers & suppliers", "Retail distributors", "Certification bodies",
	}},
	{Code: "key-activities", Title: "Key Activities", Icon: "sparkles", Tone: "green", Span: 1, Items: []string{
		"Organic product R&D", "Spa partner training", "Sustainable farming", "Quality control",
	}},
	{Code: "value-propositions", Title: "Value Propositions", Icon: "award", Tone: "green", Span: 2, Items: []string{
		"Certified organic skincare", "Professional-grade formulations", "Environmental responsibility", "Results-driven treatments",
	}},
	{Code: "customer-segments", Title: "Customer Segments", Icon: "users", Tone: "green", Span: 1, Items: []string{
		"Professional spas", "Eco-conscious consumers", "Premium skincare users", "International markets",
	}},
	{Code: "key-resources", Title: "Key Resources", Icon: "package", Tone: "green", Span: 1, Items: []string{
		"Organic farms", "R&D laboratories", "Brand reputation", "Partner network",
	}},
	{Code: "channels", Title: "Channels", Icon: "globe", Tone: "green", Span: 2, Items: []string{
		"Professional spa distribution", "E-commerce platform", "Select retail partners", "International distributors",
	}},
	{Code: "customer-relationships", Title: "Customer Relationships", Icon: "heart", Tone: "green", Span: 1, Items: []string{
		"Professional education", "Personal consultations", "Loyalty programs", "Community building",
	}},
	{Code: "cost-structure", Title: "💰 Cost Structure", Tone: "red", Span: 2, Items: []string{
		"Organic ingredient sourcing", "Manufacturing & quality control", "Partner support & training", "Sustainability initiatives",
	}},
	{Code: "revenue-streams", Title: "💵 Revenue Streams", Tone: "green", Span: 3, Items: []string{
		"Professional product sales to spas", "Direct-to-consumer e-commerce", "Training & certification programs", "International distribution",
	}},
}

var defaultCanvasHighlights = []Highlight{
	{Title: "🌱 Sustainability Impact", Body: "23.8M trees planted through Forests for the Future™ program", Tone: "green"},
	{Title: "🏆 Market Position", Body: "Leading organic professional skincare brand in North America", Tone: "blue"},
	{Title: "💡 Innovation Focus", Body: "Biodynamic ingredients and sustainable packaging solutions", Tone: "purple"},
}

var defaultPriorityActions = []PriorityAction{
	{Title: "Expand Biodynamic Sourcing", Detail: "Increase certified biodynamic ingredients to 80% by Q3", Tone: "green"},
	{Title: "Accelerate Spa Partner Training", Detail: "Train 761 more estheticians to meet annual target", Tone: "yellow"},
	{Title: "Launch Sustainable Packaging", Detail: "Roll out refillable containers for top 5 products", Tone: "blue"},
}

var defaultSustainabilityStats = []SustainabilityStat{
	{Label: "Trees Planted This Month", Value: "182,450"},
	{Label: "Carbon Neutral Products", Value: "76%"},
	{Label: "Plastic Reduction YTD", Value: "-23%"},
	{Label: "Green Spa Partners", Value: "1,892"},
}

// CanvasBlocks returns the nine business model canvas blocks in display order.
func CanvasBlocks() []CanvasBlock {
	out := make([]CanvasBlock, len(defaultCanvasBlocks))
	for i, block := range defaultCanvasBlocks {
		block.Items = append([]string(nil), block.Items...)
		out[i] = block
	}
	return out
}

// CanvasHighlights returns the three callouts rendered under the canvas.
func CanvasHighlights() []Highlight {
	return append([]Highlight(nil), defaultCanvasHighlights...)
}

// PriorityActions returns the overview priority list.
func PriorityActions() []PriorityAction {
	return append([]PriorityAction(nil), defaultPriorityActions...)
}

// SustainabilityHighlights returns the overview sustainability rows.
func SustainabilityHighlights() []SustainabilityStat {
	return append([]SustainabilityStat(nil), defaultSustainabilityStats...)
}
