// Package cache stores settled layouts on disk so a later run over the same
// graph starts from where the previous one came to rest.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/recera/synapse/pkg/graphview"
)

// Cache is a directory of layout snapshots with a JSON index
type Cache struct {
	mu         sync.RWMutex
	dir        string
	index      *Index
	maxEntries int
	maxAge     time.Duration
	strategy   EvictionStrategy
	stats      Stats
}

// Index tracks all cached layouts
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry describes one cached layout
type Entry struct {
	Key         string    `json:"key"`
	Path        string    `json:"path"`
	Nodes       int       `json:"nodes"`
	Created     time.Time `json:"created"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// Stats tracks cache effectiveness
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Entries   int   `json:"entries"`
}

// EvictionStrategy defines which layout is dropped when the cache is full
type EvictionStrategy int

const (
	// LRU removes least recently used layouts
	LRU EvictionStrategy = iota
	// FIFO removes oldest layouts first
	FIFO
)

// Layout maps node ids to world positions
type Layout map[string]graphview.Point

// Config holds cache configuration
type Config struct {
	Dir        string           // default: $HOME/.cache/synapse
	MaxEntries int              // default: 64
	MaxAge     time.Duration    // zero keeps layouts forever
	Strategy   EvictionStrategy // default: LRU
}

const indexVersion = "1"

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Dir:        filepath.Join(homeDir, ".cache", "synapse"),
		MaxEntries: 64,
		MaxAge:     30 * 24 * time.Hour,
		Strategy:   LRU,
	}
}

// New opens or creates a cache
func New(config Config) (*Cache, error) {
	if config.Dir == "" {
		config.Dir = DefaultConfig().Dir
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultConfig().MaxEntries
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "layouts"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:        config.Dir,
		maxEntries: config.MaxEntries,
		maxAge:     config.MaxAge,
		strategy:   config.Strategy,
	}
	if err := c.loadIndex(); err != nil {
		// Index doesn't exist or is corrupted, start fresh
		c.index = newIndex()
	}
	c.stats.Entries = len(c.index.Entries)
	return c, nil
}

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

// Get returns the layout stored under key
func (c *Cache) Get(key string) (Layout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.isExpired(entry) {
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	data, err := os.ReadFile(entry.Path)
	var layout Layout
	if err == nil {
		err = json.Unmarshal(data, &layout)
	}
	if err != nil {
		// Cache file is missing or corrupted
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.AccessCount++
	c.stats.Hits++
	c.saveIndexLocked()
	return layout, true
}

// Put stores a layout, evicting old ones when the cache is full
func (c *Cache) Put(key string, layout Layout) error {
	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to encode layout: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index.Entries[key]; !exists {
		for len(c.index.Entries) >= c.maxEntries {
			if !c.evictLocked() {
				break
			}
		}
	}

	path := filepath.Join(c.dir, "layouts", key+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write layout: %w", err)
	}

	now := time.Now()
	c.index.Entries[key] = &Entry{
		Key:        key,
		Path:       path,
		Nodes:      len(layout),
		Created:    now,
		LastAccess: now,
	}
	c.index.Updated = now
	c.stats.Entries = len(c.index.Entries)
	return c.saveIndexLocked()
}

// Delete removes a layout
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
	return c.saveIndexLocked()
}

// Clear removes every layout
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	layouts := filepath.Join(c.dir, "layouts")
	if err := os.RemoveAll(layouts); err != nil {
		return fmt.Errorf("failed to clear layouts: %w", err)
	}
	if err := os.MkdirAll(layouts, 0755); err != nil {
		return err
	}
	c.index = newIndex()
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Key identifies a graph by its node ids and connections, ignoring order
// and positions
func Key(nodes []*graphview.Node, conns []graphview.Connection) string {
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n != nil {
			ids = append(ids, n.ID)
		}
	}
	sort.Strings(ids)

	edges := make([]string, 0, len(conns))
	for _, c := range conns {
		edges = append(edges, c.Source+"\x00"+c.Target+"\x00"+strconv.FormatFloat(c.Strength, 'g', -1, 64))
	}
	sort.Strings(edges)

	h := sha256.New()
	for _, id := range ids {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, e := range edges {
		h.Write([]byte(e))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot records the positions of placed nodes
func Snapshot(nodes []*graphview.Node) Layout {
	layout := make(Layout, len(nodes))
	for _, n := range nodes {
		if n != nil && n.Placed() {
			layout[n.ID] = graphview.Point{X: n.X, Y: n.Y}
		}
	}
	return layout
}

// Apply places nodes found in layout and returns how many were placed
func (l Layout) Apply(nodes []*graphview.Node) int {
	placed := 0
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if p, ok := l[n.ID]; ok {
			n.Place(p.X, p.Y)
			n.VX, n.VY = 0, 0
			placed++
		}
	}
	return placed
}

// Private methods

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, "index.json"))
	if err != nil {
		return err
	}
	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion || index.Entries == nil {
		return fmt.Errorf("unsupported index version %q", index.Version)
	}
	c.index = &index
	return nil
}

// saveIndexLocked writes the index; caller must hold the lock
func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, "index.json"), data, 0644)
}

func (c *Cache) isExpired(entry *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}

func (c *Cache) removeLocked(key string) {
	entry, ok := c.index.Entries[key]
	if !ok {
		return
	}
	if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: failed to remove cached layout %s: %v\n", entry.Path, err)
	}
	delete(c.index.Entries, key)
	c.index.Updated = time.Now()
	c.stats.Entries = len(c.index.Entries)
}

// evictLocked drops one entry by strategy; false when nothing is left
func (c *Cache) evictLocked() bool {
	var victim *Entry
	for _, entry := range c.index.Entries {
		if victim == nil {
			victim = entry
			continue
		}
		switch c.strategy {
		case FIFO:
			if entry.Created.Before(victim.Created) {
				victim = entry
			}
		default:
			if entry.LastAccess.Before(victim.LastAccess) {
				victim = entry
			}
		}
	}
	if victim == nil {
		return false
	}
	c.removeLocked(victim.Key)
	c.stats.Evictions++
	return true
}
