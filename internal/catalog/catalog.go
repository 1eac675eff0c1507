// Package catalog holds the immutable training catalog: the ordered list of
// modules, their content sections, and their quizzes. The catalog is loaded
// once at startup and never mutated afterwards.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModuleNotFound is returned when a module id is not part of the catalog.
var ErrModuleNotFound = errors.New("catalog: module not found")

// Provider lists the modules available for the lifetime of the process.
type Provider interface {
	ListModules() []Module
}

// Catalog is an ordered, validated set of modules indexed by id.
type Catalog struct {
	modules []Module
	index   map[string]int
}

// New validates the modules and builds a catalog preserving their order.
func New(modules []Module) (*Catalog, error) {
	c := &Catalog{
		modules: make([]Module, 0, len(modules)),
		index:   make(map[string]int, len(modules)),
	}
	for idx, mod := range modules {
		if err := mod.Validate(); err != nil {
			return nil, fmt.Errorf("modules[%d]: %w", idx, err)
		}
		normalized := mod.Normalized()
		if _, dup := c.index[normalized.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate module id %s", normalized.ID)
		}
		c.index[normalized.ID] = len(c.modules)
		c.modules = append(c.modules, normalized)
	}
	return c, nil
}

// ListModules returns the modules in catalog order. The slice is a copy.
func (c *Catalog) ListModules() []Module {
	if c == nil {
		return nil
	}
	out := make([]Module, len(c.modules))
	copy(out, c.modules)
	return out
}

// Len reports how many modules the catalog holds.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.modules)
}

// Module resolves a module by id.
func (c *Catalog) Module(id string) (Module, error) {
	if c == nil {
		return Module{}, ErrModuleNotFound
	}
	idx, ok := c.index[strings.TrimSpace(id)]
	if !ok {
		return Module{}, fmt.Errorf("%w: %s", ErrModuleNotFound, id)
	}
	return c.modules[idx], nil
}

// Title returns the module title or "" when the id is unknown.
func (c *Catalog) Title(id string) string {
	mod, err := c.Module(id)
	if err != nil {
		return ""
	}
	return mod.Title
}
