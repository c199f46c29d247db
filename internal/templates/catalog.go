package templates

import (
	"sync"
	"time"
)

// Catalog holds the current templates in memory. Reloads swap the whole set.
type Catalog struct {
	mu         sync.RWMutex
	templates  map[string]*Template // Key -> Template
	order      []string
	lastReload time.Time
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		templates: make(map[string]*Template),
	}
}

// Replace swaps in a new template set, keeping the given order.
func (c *Catalog) Replace(templates []*Template) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.templates = make(map[string]*Template, len(templates))
	c.order = make([]string, 0, len(templates))
	for _, t := range templates {
		if _, dup := c.templates[t.Key]; !dup {
			c.order = append(c.order, t.Key)
		}
		c.templates[t.Key] = t
	}
	c.lastReload = time.Now()
}

// Get retrieves a template by key
func (c *Catalog) Get(key string) (*Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.templates[key]
	return t, ok
}

// All returns every template in file order
func (c *Catalog) All() []*Template {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Template, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.templates[key])
	}
	return out
}

// Count returns the number of templates
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.templates)
}

// LastReload returns when the catalog was last replaced
func (c *Catalog) LastReload() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastReload
}
