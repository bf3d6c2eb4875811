package memory

import (
	"testing"
	"time"

	"truthschool-funnel/internal/app"
)

func TestVisitStoreLifecycle(t *testing.T) {
	store := NewVisitStore()

	store.Register(&app.Visit{ID: "v1", OpenedAt: time.Now()})
	if _, ok := store.Get("v1"); !ok {
		t.Fatalf("expected visit present")
	}
	if store.Count() != 1 {
		t.Fatalf("expected 1 visit, got %d", store.Count())
	}

	store.Remove("v1")
	if _, ok := store.Get("v1"); ok {
		t.Fatalf("expected visit removed")
	}
	if store.Count() != 0 {
		t.Fatalf("expected no visits, got %d", store.Count())
	}
}
