// Package registry maps command types to the Pipelines that resolve them.
// A Catalog is built from an explicit list of entries; there is no discovery.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/pipeline"
)

// ErrDuplicateCommand is returned when two pipelines claim the same command type.
var ErrDuplicateCommand = errors.New("command type already registered")

// Entry binds a command type to its pipeline.
type Entry struct {
	Type     domain.CommandType
	Pipeline *pipeline.Pipeline
}

// Catalog manages the available pipelines.
type Catalog struct {
	mu        sync.RWMutex
	pipelines map[domain.CommandType]*pipeline.Pipeline
}

// NewCatalog creates a catalog from entries.
func NewCatalog(entries ...Entry) (*Catalog, error) {
	c := &Catalog{pipelines: make(map[domain.CommandType]*pipeline.Pipeline, len(entries))}
	for _, e := range entries {
		if err := c.Register(e.Type, e.Pipeline); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a pipeline for a command type.
// Unlike a plain map write, registering the same type twice is an error.
func (c *Catalog) Register(t domain.CommandType, p *pipeline.Pipeline) error {
	if t == "" {
		return errors.New("command type is required")
	}
	if p == nil {
		return fmt.Errorf("pipeline for %q is nil", t)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.pipelines[t]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, t)
	}
	c.pipelines[t] = p
	return nil
}

// Lookup returns the pipeline for a command type.
func (c *Catalog) Lookup(t domain.CommandType) (*pipeline.Pipeline, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pipelines[t]
	return p, ok
}

// Types lists the registered command types in sorted order.
func (c *Catalog) Types() []domain.CommandType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.CommandType, 0, len(c.pipelines))
	for t := range c.pipelines {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
