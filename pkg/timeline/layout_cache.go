package timeline

import (
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klokku/timeline/pkg/lane"
	log "github.com/sirupsen/logrus"
)

type layoutKey struct {
	userId int
	from   lane.Date
	to     lane.Date
}

// LayoutCache keeps the most recently used timelines. Every user has a
// generation that Invalidate bumps; a timeline computed under an older
// generation is never stored.
type LayoutCache struct {
	mu          sync.Mutex
	entries     *lru.Cache[layoutKey, Timeline]
	generations map[int]uint64
}

// NewLayoutCache returns a cache holding up to capacity timelines. A capacity
// below 1 disables caching.
func NewLayoutCache(capacity int) *LayoutCache {
	c := &LayoutCache{generations: make(map[int]uint64)}
	if capacity < 1 {
		return c
	}
	entries, err := lru.New[layoutKey, Timeline](capacity)
	if err != nil {
		log.Errorf("timeline cache disabled: %v", err)
		return c
	}
	c.entries = entries
	return c
}

// Generation returns the current generation of userId. Read it before loading
// the events a timeline is computed from and pass it to Put.
func (c *LayoutCache) Generation(userId int) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[userId]
}

// Get returns a copy of the cached timeline.
func (c *LayoutCache) Get(userId int, from, to lane.Date) (Timeline, bool) {
	if c.entries == nil {
		return Timeline{}, false
	}
	t, ok := c.entries.Get(layoutKey{userId, from, to})
	if !ok {
		return Timeline{}, false
	}
	return t.clone(), true
}

// Put stores a copy of t unless userId was invalidated after generation was read.
func (c *LayoutCache) Put(userId int, from, to lane.Date, generation uint64, t Timeline) {
	if c.entries == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[userId] != generation {
		log.Tracef("Not caching timeline of user %d, events changed while it was computed", userId)
		return
	}
	c.entries.Add(layoutKey{userId, from, to}, t.clone())
}

// Invalidate drops every timeline cached for userId.
func (c *LayoutCache) Invalidate(userId int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[userId]++
	if c.entries == nil {
		return
	}
	for _, key := range c.entries.Keys() {
		if key.userId == userId {
			c.entries.Remove(key)
		}
	}
}

func (c *LayoutCache) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

func (t Timeline) clone() Timeline {
	if t.Lanes != nil {
		lanes := make([]Lane, len(t.Lanes))
		for i, l := range t.Lanes {
			lanes[i] = Lane{Index: l.Index, Items: slices.Clone(l.Items)}
		}
		t.Lanes = lanes
	}
	t.Scale = slices.Clone(t.Scale)
	return t
}
