package diagram

import (
	"slices"

	"github.com/matzehuels/drawtf/pkg/dot"
)

// NodeCache maps component keys to drawn-node handles. It is written only
// by the render traversal and read by the link resolver afterwards.
type NodeCache struct {
	handles map[string]dot.Handle
	order   []string
}

// NewNodeCache creates an empty cache.
func NewNodeCache() *NodeCache {
	return &NodeCache{handles: make(map[string]dot.Handle)}
}

// Put stores h under key. An existing entry is overwritten (last write
// wins) and Put reports true so the caller can flag the duplicate key.
func (c *NodeCache) Put(key string, h dot.Handle) (overwritten bool) {
	if _, overwritten = c.handles[key]; !overwritten {
		c.order = append(c.order, key)
	}
	c.handles[key] = h
	return overwritten
}

// Get returns the handle stored under key.
func (c *NodeCache) Get(key string) (dot.Handle, bool) {
	h, ok := c.handles[key]
	return h, ok
}

// Keys returns cached keys in first-insertion order.
func (c *NodeCache) Keys() []string { return slices.Clone(c.order) }

// Len returns the number of cached keys.
func (c *NodeCache) Len() int { return len(c.order) }
