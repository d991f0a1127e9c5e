package tiered_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Strob0t/AdForge/internal/adapter/tiered"
)

// stubCache is a map-backed cache level used to observe tier behavior.
type stubCache struct {
	data map[string][]byte
	sets int
	gets int
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string][]byte)}
}

func (s *stubCache) Get(_ context.Context, key string) (data []byte, ok bool, err error) {
	s.gets++
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.sets++
	s.data[key] = value
	return nil
}

func (s *stubCache) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func TestTiered_L1HitSkipsL2(t *testing.T) {
	l1 := newStubCache()
	l2 := newStubCache()
	c := tiered.New(l1, l2, time.Minute)
	ctx := context.Background()

	l1.data["report.run-a"] = []byte(`{"run_id":"run-a"}`)

	val, found, err := c.Get(ctx, "report.run-a")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected hit")
	}
	var payload map[string]string
	if err := json.Unmarshal(val, &payload); err != nil {
		t.Fatalf("unmarshal cached report: %v", err)
	}
	if payload["run_id"] != "run-a" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if l2.gets != 0 {
		t.Fatalf("L2 consulted %d times on L1 hit", l2.gets)
	}
}

func TestTiered_L2HitBackfillsL1(t *testing.T) {
	l1 := newStubCache()
	l2 := newStubCache()
	c := tiered.New(l1, l2, time.Minute)
	ctx := context.Background()

	l2.data["report.run-b"] = []byte("cold")

	val, found, err := c.Get(ctx, "report.run-b")
	if err != nil {
		t.Fatal(err)
	}
	if !found || string(val) != "cold" {
		t.Fatalf("expected L2 hit with cold, got found=%v val=%q", found, val)
	}
	if got, ok := l1.data["report.run-b"]; !ok || string(got) != "cold" {
		t.Fatalf("expected L1 backfill, got %q (present=%v)", got, ok)
	}
}

func TestTiered_MissTouchesBothLevels(t *testing.T) {
	l1 := newStubCache()
	l2 := newStubCache()
	c := tiered.New(l1, l2, time.Minute)

	_, found, err := c.Get(context.Background(), "report.run-absent")
	if err != nil {
		t.Fatal(err)
	}
	if found {
		t.Fatal("expected miss")
	}
	if l1.gets != 1 || l2.gets != 1 {
		t.Fatalf("expected one lookup per level, got l1=%d l2=%d", l1.gets, l2.gets)
	}
}

func TestTiered_WriteThrough(t *testing.T) {
	l1 := newStubCache()
	l2 := newStubCache()
	c := tiered.New(l1, l2, time.Minute)
	ctx := context.Background()

	if err := c.Set(ctx, "report.run-c", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if l1.sets != 1 || l2.sets != 1 {
		t.Fatalf("expected write-through, got l1=%d l2=%d sets", l1.sets, l2.sets)
	}

	if err := c.Delete(ctx, "report.run-c"); err != nil {
		t.Fatal(err)
	}
	if _, ok := l1.data["report.run-c"]; ok {
		t.Fatal("key still in L1 after delete")
	}
	if _, ok := l2.data["report.run-c"]; ok {
		t.Fatal("key still in L2 after delete")
	}
}
