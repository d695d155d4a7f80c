package classify

import (
	"encoding/json"
	"fmt"
	"os"
)

// Entry is one cached item classification. Category is authoritative;
// Classification is the legacy field name written by an earlier version of
// the classifier and is accepted as a fallback on load.
type Entry struct {
	ItemID         int64  `json:"item_id"`
	Name           string `json:"name"`
	Category       string `json:"category,omitempty"`
	Classification string `json:"classification,omitempty"`
}

func (e Entry) category() string {
	if e.Category != "" {
		return e.Category
	}
	if e.Classification != "" {
		return e.Classification
	}
	return Uncategorised
}

// Cache is the on-disk classification cache. Entries are sticky: once an
// item is cached its category is never re-derived, so a resumed run makes
// zero new calls for already-cached items.
type Cache struct {
	path    string
	entries map[int64]Entry
	order   []int64
	dirty   bool
}

// LoadCache reads the cache file at path. A missing or corrupt file yields
// an empty cache rather than an error, matching how a first run starts.
func LoadCache(path string) *Cache {
	c := &Cache{path: path, entries: make(map[int64]Entry)}
	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return c
	}
	for _, e := range entries {
		if _, ok := c.entries[e.ItemID]; !ok {
			c.order = append(c.order, e.ItemID)
		}
		c.entries[e.ItemID] = e
	}
	return c
}

// Get returns the cached category for an item, resolving the legacy field.
func (c *Cache) Get(itemID int64) (string, bool) {
	e, ok := c.entries[itemID]
	if !ok {
		return "", false
	}
	return e.category(), true
}

// Put records a freshly classified item and marks the cache dirty.
func (c *Cache) Put(itemID int64, name, category string) {
	if _, ok := c.entries[itemID]; !ok {
		c.order = append(c.order, itemID)
	}
	c.entries[itemID] = Entry{ItemID: itemID, Name: name, Category: category}
	c.dirty = true
}

// Dirty reports whether new entries were added since load.
func (c *Cache) Dirty() bool {
	return c.dirty
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Save writes the cache back to its file, normalized to the current field
// name and in stable insertion order so previously cached entries are
// never lost by a partial run.
func (c *Cache) Save() error {
	entries := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		e := c.entries[id]
		entries = append(entries, Entry{ItemID: e.ItemID, Name: e.Name, Category: e.category()})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", c.path, err)
	}
	c.dirty = false
	return nil
}
