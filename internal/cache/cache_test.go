package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/recera/synapse/pkg/graphview"
)

func newTestCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create cache: %v", err)
	}
	return c
}

func TestCache_GetPut(t *testing.T) {
	cache := newTestCache(t, Config{})

	layout := Layout{"a": {X: 1, Y: 2}, "b": {X: -3, Y: 4.5}}
	if err := cache.Put("graph", layout); err != nil {
		t.Fatalf("Failed to put layout: %v", err)
	}

	got, found := cache.Get("graph")
	if !found {
		t.Fatal("Layout not found in cache")
	}
	if len(got) != 2 || got["b"] != (graphview.Point{X: -3, Y: 4.5}) {
		t.Errorf("Retrieved layout = %v", got)
	}

	if _, found := cache.Get("other"); found {
		t.Error("Found non-existent key")
	}

	stats := cache.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestCache_Delete(t *testing.T) {
	cache := newTestCache(t, Config{})
	cache.Put("k", Layout{"a": {}})

	if err := cache.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := cache.Get("k"); found {
		t.Error("Deleted layout still present")
	}
	if err := cache.Delete("k"); err != nil {
		t.Errorf("Deleting twice should be harmless: %v", err)
	}
}

func TestCache_Eviction_LRU(t *testing.T) {
	cache := newTestCache(t, Config{MaxEntries: 2, Strategy: LRU})

	cache.Put("first", Layout{})
	time.Sleep(2 * time.Millisecond)
	cache.Put("second", Layout{})
	time.Sleep(2 * time.Millisecond)
	cache.Get("first") // first is now the most recent
	time.Sleep(2 * time.Millisecond)
	cache.Put("third", Layout{})

	if _, found := cache.Get("second"); found {
		t.Error("Least recently used layout should be evicted")
	}
	if _, found := cache.Get("first"); !found {
		t.Error("Recently used layout should survive")
	}
	if cache.GetStats().Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", cache.GetStats().Evictions)
	}
}

func TestCache_Eviction_FIFO(t *testing.T) {
	cache := newTestCache(t, Config{MaxEntries: 2, Strategy: FIFO})

	cache.Put("first", Layout{})
	time.Sleep(2 * time.Millisecond)
	cache.Put("second", Layout{})
	cache.Get("first")
	time.Sleep(2 * time.Millisecond)
	cache.Put("third", Layout{})

	if _, found := cache.Get("first"); found {
		t.Error("Oldest layout should be evicted regardless of access")
	}
}

func TestCache_Expiration(t *testing.T) {
	cache := newTestCache(t, Config{MaxAge: 10 * time.Millisecond})
	cache.Put("k", Layout{"a": {}})
	time.Sleep(20 * time.Millisecond)

	if _, found := cache.Get("k"); found {
		t.Error("Expired layout should not be returned")
	}
}

func TestCache_CorruptFile(t *testing.T) {
	cache := newTestCache(t, Config{})
	cache.Put("k", Layout{"a": {}})
	os.WriteFile(cache.index.Entries["k"].Path, []byte("{not json"), 0644)

	if _, found := cache.Get("k"); found {
		t.Error("Corrupt layout should be a miss")
	}
	if cache.GetStats().Entries != 0 {
		t.Error("Corrupt entry should be dropped")
	}
}

func TestCache_Clear(t *testing.T) {
	cache := newTestCache(t, Config{})
	cache.Put("a", Layout{})
	cache.Put("b", Layout{})

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if cache.GetStats().Entries != 0 {
		t.Error("Clear should drop every entry")
	}
	if err := cache.Put("c", Layout{}); err != nil {
		t.Errorf("Put after Clear failed: %v", err)
	}
}

func TestCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	first := newTestCache(t, Config{Dir: dir})
	first.Put("k", Layout{"a": {X: 9, Y: 9}})

	second := newTestCache(t, Config{Dir: dir})
	got, found := second.Get("k")
	if !found || got["a"].X != 9 {
		t.Errorf("Layout should survive reopening, got %v", got)
	}

	os.WriteFile(filepath.Join(dir, "index.json"), []byte("garbage"), 0644)
	third := newTestCache(t, Config{Dir: dir})
	if third.GetStats().Entries != 0 {
		t.Error("Corrupt index should start fresh")
	}
}

func TestCache_Concurrent(t *testing.T) {
	cache := newTestCache(t, Config{MaxEntries: 8})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			for j := 0; j < 10; j++ {
				cache.Put(key, Layout{key: {X: float64(j)}})
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()
	if n := cache.GetStats().Entries; n > 8 {
		t.Errorf("Entries = %d exceeds the limit", n)
	}
}

func TestKey(t *testing.T) {
	a := graphview.NewPlacedNode("a", "A", 1, 1)
	b := graphview.NewNode("b", "B")
	conns := []graphview.Connection{{Source: "a", Target: "b", Strength: 0.5}}

	k1 := Key([]*graphview.Node{a, b}, conns)
	k2 := Key([]*graphview.Node{b, nil, graphview.NewNode("a", "renamed")}, conns)
	if k1 != k2 {
		t.Error("Key should ignore order, labels and positions")
	}
	if Key([]*graphview.Node{a, b}, nil) == k1 {
		t.Error("Connections should change the key")
	}
	if Key([]*graphview.Node{a}, conns) == k1 {
		t.Error("Nodes should change the key")
	}
}

func TestSnapshotApply(t *testing.T) {
	nodes := []*graphview.Node{
		graphview.NewPlacedNode("a", "A", 3, 4),
		graphview.NewNode("b", "B"),
		nil,
	}
	layout := Snapshot(nodes)
	if len(layout) != 1 {
		t.Fatalf("Only placed nodes belong in the snapshot, got %v", layout)
	}

	fresh := []*graphview.Node{graphview.NewNode("a", "A"), graphview.NewNode("c", "C"), nil}
	fresh[0].VX = 5
	if n := layout.Apply(fresh); n != 1 {
		t.Errorf("Apply placed %d nodes, want 1", n)
	}
	if !fresh[0].Placed() || fresh[0].X != 3 || fresh[0].VX != 0 {
		t.Errorf("Node a = %+v", *fresh[0])
	}
	if fresh[1].Placed() {
		t.Error("Unknown node should stay unplaced")
	}
}
