package queries

import (
	"context"
	"errors"
	"testing"

	eclipse "github.com/goliatone/go-eclipse/components/eclipse"
)

type stubSessionService struct {
	calls int
	err   error
}

func (s *stubSessionService) Snapshot(_ context.Context, id string) (eclipse.SessionSnapshot, error) {
	s.calls++
	return eclipse.SessionSnapshot{ID: id}, s.err
}

func TestSessionQuery(t *testing.T) {
	service := &stubSessionService{}
	query := NewSessionQuery(service)
	snapshot, err := query.Query(context.Background(), SessionInput{SessionID: "s-1"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.calls != 1 || snapshot.ID != "s-1" {
		t.Fatalf("unexpected query result %+v after %d calls", snapshot, service.calls)
	}
}

func TestSessionQueryPropagatesErrors(t *testing.T) {
	service := &stubSessionService{err: eclipse.ErrSessionNotFound}
	if _, err := NewSessionQuery(service).Query(context.Background(), SessionInput{}); !errors.Is(err, eclipse.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestCatalogQuery(t *testing.T) {
	query := NewCatalogQuery(eclipse.NewService(eclipse.Options{}))
	all, err := query.Query(context.Background(), CatalogInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(all) != 16 {
		t.Fatalf("expected 16 metrics, got %d", len(all))
	}
	revenue, _ := query.Query(context.Background(), CatalogInput{View: eclipse.CategoryRevenue})
	if len(revenue) != 2 || revenue[0].ID != "organic-revenue" || revenue[1].ID != "online-sales" {
		t.Fatalf("unexpected revenue metrics %+v", revenue)
	}
}
