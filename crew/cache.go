package crew

import "sync"

// toolCache keeps tool observations by tool name and canonical input
type toolCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func newToolCache() *toolCache {
	return &toolCache{items: make(map[string]string)}
}

func (c *toolCache) key(tool string, input string) string {
	return tool + "\x00" + input
}

func (c *toolCache) Get(tool string, input string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[c.key(tool, input)]
	return v, ok
}

func (c *toolCache) Set(tool string, input string, observation string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items[c.key(tool, input)] = observation
	c.mu.Unlock()
}
