// Package catalog loads the static list of selectable PC components.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/internal/storage/filestore"
)

const typeField = "type"

var errUnknownShape = errors.New("catalog must be a JSON object of categories or a JSON list")

// Component is one catalog entry. Only "type" is guaranteed; every other
// field depends on the category.
type Component map[string]any

// Type returns the component category, or "" if it is missing.
func (c Component) Type() string {
	t, _ := c[typeField].(string)
	return t
}

// Parse decodes catalog JSON. A mapping of category to items is flattened
// into one list, with categories in sorted order and each item's type set to
// its category when missing. A flat list is returned as is.
func Parse(data []byte) ([]Component, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errUnknownShape
	}

	switch trimmed[0] {
	case '[':
		var items []Component
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil

	case '{':
		var grouped map[string][]Component
		if err := json.Unmarshal(trimmed, &grouped); err != nil {
			return nil, err
		}

		categories := make([]string, 0, len(grouped))
		for category := range grouped {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		items := make([]Component, 0)
		for _, category := range categories {
			for _, item := range grouped[category] {
				if item == nil {
					item = Component{}
				}
				if _, ok := item[typeField]; !ok {
					item[typeField] = category
				}
				items = append(items, item)
			}
		}
		return items, nil
	}

	return nil, errUnknownShape
}

// Load reads the catalog at path. A missing or malformed file is logged and
// yields an empty list.
func Load(path string, logger *zap.Logger) []Component {
	if logger == nil {
		logger = zap.NewNop()
	}
	data, err := filestore.ReadFileOrEmpty(path)
	if err != nil {
		logger.Warn("could not read component catalog", zap.String("path", path), zap.Error(err))
		return []Component{}
	}
	if data == nil {
		logger.Warn("component catalog not found", zap.String("path", path))
		return []Component{}
	}

	items, err := Parse(data)
	if err != nil {
		logger.Warn("component catalog is malformed", zap.String("path", path), zap.Error(err))
		return []Component{}
	}
	if items == nil {
		items = []Component{}
	}
	return items
}

// Catalog holds the loaded components and reloads them lazily when the
// in-memory list is empty, so a catalog file that shows up after startup is
// picked up on the next request.
type Catalog struct {
	mu     sync.RWMutex
	path   string
	items  []Component
	logger *zap.Logger
}

// New creates a Catalog and loads it once.
func New(path string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{path: path, logger: logger.With(zap.String("component", "catalog"))}
	c.Reload()
	return c
}

// List returns the components, reloading first if the list is empty.
func (c *Catalog) List() []Component {
	c.ReloadIfEmpty()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Component, len(c.items))
	copy(out, c.items)
	return out
}

// Reload reads the catalog file again and returns the number of components.
func (c *Catalog) Reload() int {
	items := Load(c.path, c.logger)

	c.mu.Lock()
	c.items = items
	c.mu.Unlock()

	c.logger.Info("component catalog loaded", zap.String("path", c.path), zap.Int("components", len(items)))
	return len(items)
}

// ReloadIfEmpty reloads only when nothing is loaded. Reports whether a reload
// happened.
func (c *Catalog) ReloadIfEmpty() bool {
	c.mu.RLock()
	empty := len(c.items) == 0
	c.mu.RUnlock()

	if !empty {
		return false
	}
	c.Reload()
	return true
}
