// package cache provides a bounded LRU cache of translated lyric lines with
// optional persistence across sessions.
package cache

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultCapacity bounds memory for long sessions while still covering the
// repeated lines of a typical listening queue.
const DefaultCapacity = 1000

// Key identifies a cached translation. Text is whitespace-trimmed and the
// language tag lowercased so lookups are insensitive to formatting noise.
type Key struct {
	Text string
	Lang string
}

// NewKey builds a normalized cache key.
func NewKey(text, lang string) Key {
	return Key{
		Text: strings.TrimSpace(text),
		Lang: strings.ToLower(strings.TrimSpace(lang)),
	}
}

// entry tracks the translated text plus the bookkeeping used for eviction.
// recency orders entries by last access; seq breaks ties by insertion order.
type entry struct {
	text    string
	recency uint64
	seq     uint64
}

// Cache is a thread-safe LRU map of translations. A nil store degrades to a
// memory-only cache.
type Cache struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	capacity  int
	clock     uint64
	seq       uint64
	store     *Store
	saveEvery int
	puts      int
	logger    *log.Logger
}

// New creates a cache bounded at capacity entries, loading any previously
// persisted entries from store. A corrupt or unreadable store is discarded
// and the cache starts empty.
func New(capacity int, store *Store, saveEvery int, logger *log.Logger) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		entries:   make(map[Key]*entry),
		capacity:  capacity,
		store:     store,
		saveEvery: saveEvery,
		logger:    logger,
	}

	if store == nil {
		return c
	}

	rows, err := store.Load()
	if err != nil {
		logger.Warn("Discarding unreadable translation cache", "error", err)
		if err := store.Reset(); err != nil {
			logger.Warn("Could not reset cache store, continuing memory-only", "error", err)
			c.store = nil
		}
		return c
	}

	for _, row := range rows {
		c.entries[Key{Text: row.Text, Lang: row.Lang}] = &entry{
			text:    row.Translated,
			recency: row.Recency,
			seq:     row.Seq,
		}
		if row.Recency > c.clock {
			c.clock = row.Recency
		}
		if row.Seq > c.seq {
			c.seq = row.Seq
		}
	}
	c.evictLocked()
	return c
}

// Get returns the cached translation for key and marks it recently used.
func (c *Cache) Get(key Key) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	c.clock++
	e.recency = c.clock
	return e.text, true
}

// Put stores a translation, evicting the least recently used entries if the
// cache is over capacity. The entry just written is never evicted.
func (c *Cache) Put(key Key, translated string) {
	c.mu.Lock()

	c.clock++
	if e, ok := c.entries[key]; ok {
		e.text = translated
		e.recency = c.clock
	} else {
		c.seq++
		c.entries[key] = &entry{text: translated, recency: c.clock, seq: c.seq}
		c.evictLocked()
	}

	flush := false
	if c.store != nil && c.saveEvery > 0 {
		c.puts++
		if c.puts%c.saveEvery == 0 {
			flush = true
		}
	}
	c.mu.Unlock()

	if flush {
		if err := c.Flush(); err != nil {
			c.logger.Warn("Periodic cache flush failed", "error", err)
		}
	}
}

// Len reports the number of cached translations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry from memory and from the store.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[Key]*entry)
	c.clock = 0
	c.seq = 0
	c.puts = 0
	store := c.store
	c.mu.Unlock()

	if store == nil {
		return nil
	}
	return store.Reset()
}

// Flush persists the current contents to the store. The snapshot is taken
// under the lock but the write happens outside it so translation workers are
// never blocked on disk.
func (c *Cache) Flush() error {
	if c.store == nil {
		return nil
	}

	c.mu.Lock()
	rows := make([]Row, 0, len(c.entries))
	for key, e := range c.entries {
		rows = append(rows, Row{
			Text:       key.Text,
			Lang:       key.Lang,
			Translated: e.text,
			Recency:    e.recency,
			Seq:        e.seq,
		})
	}
	c.mu.Unlock()

	return c.store.Save(rows)
}

// evictLocked removes least recently used entries until the cache fits its
// capacity. Ties on recency fall to the older insertion. Caller holds mu.
func (c *Cache) evictLocked() {
	for len(c.entries) > c.capacity {
		var victim Key
		var victimEntry *entry
		for key, e := range c.entries {
			if victimEntry == nil ||
				e.recency < victimEntry.recency ||
				(e.recency == victimEntry.recency && e.seq < victimEntry.seq) {
				victim = key
				victimEntry = e
			}
		}
		delete(c.entries, victim)
	}
}
