package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

// CatalogInput optionally narrows the catalog to one category.
type CatalogInput struct {
	View eclipse.Category
}

type catalogService interface {
	Catalog() *eclipse.Catalog
}

// CatalogQuery lists metrics in catalog order.
type CatalogQuery struct {
	service catalogService
}

// NewCatalogQuery builds the query.
func NewCatalogQuery(service catalogService) *CatalogQuery {
	return &CatalogQuery{service: service}
}

var _ gocommand.Querier[CatalogInput, []eclipse.Metric] = (*CatalogQuery)(nil)

// Query returns every metric, or the metrics of input.View when set.
func (q *CatalogQuery) Query(_ context.Context, input CatalogInput) ([]eclipse.Metric, error) {
	catalog := q.service.Catalog()
	if input.View == "" {
		return catalog.Metrics(), nil
	}
	return catalog.ForView(input.View), nil
}
