package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"truthschool-funnel/internal/app"
)

func TestVisitStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewVisitStore(newClient(mr), time.Minute)

	store.Register(&app.Visit{ID: "v1", OpenedAt: time.Now()})
	if !mr.Exists("funnel:visit:v1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("funnel:visit:v1"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	mr.FastForward(30 * time.Second)
	if err := store.Touch(context.Background(), "v1"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	if ttl := mr.TTL("funnel:visit:v1"); ttl != time.Minute {
		t.Fatalf("expected ttl refreshed, got %v", ttl)
	}

	store.Remove("v1")
	if mr.Exists("funnel:visit:v1") {
		t.Fatalf("expected redis key to be removed")
	}
	if store.Count() != 0 {
		t.Fatalf("expected empty store, got %d", store.Count())
	}
}
