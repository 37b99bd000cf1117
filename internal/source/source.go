// Package source provides the inventory each dashboard request works on.
package source

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"inventory-dashboard/pkg/inventory"
)

// Source yields a fresh immutable inventory per call
type Source interface {
	Load(ctx context.Context) (*inventory.Inventory, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) (*inventory.Inventory, error)

func (f Func) Load(ctx context.Context) (*inventory.Inventory, error) { return f(ctx) }

// Static always returns the same inventory.
func Static(inv *inventory.Inventory) Source {
	return Func(func(context.Context) (*inventory.Inventory, error) { return inv, nil })
}

// FileSource reads a CSV or XLSX table. Parsed inventories are cached per
// file version (path, modification time and size) for the configured TTL,
// so an edited file is picked up on the next request.
type FileSource struct {
	path  string
	opts  inventory.LoadOptions
	cache *cache.Cache
}

// NewFileSource creates a file source. A ttl of zero disables caching.
func NewFileSource(path string, opts inventory.LoadOptions, ttl time.Duration) *FileSource {
	s := &FileSource{path: path, opts: opts}
	if ttl > 0 {
		s.cache = cache.New(ttl, 2*ttl)
	}
	return s
}

// Path returns the table location
func (s *FileSource) Path() string { return s.path }

func (s *FileSource) Load(ctx context.Context) (*inventory.Inventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cache == nil {
		return inventory.Load(s.path, s.opts)
	}

	info, err := os.Stat(s.path)
	if err != nil {
		// let the loader produce its typed error
		return inventory.Load(s.path, s.opts)
	}
	key := fmt.Sprintf("%s|%d|%d", s.path, info.ModTime().UnixNano(), info.Size())
	if v, found := s.cache.Get(key); found {
		return v.(*inventory.Inventory), nil
	}

	inv, err := inventory.Load(s.path, s.opts)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, inv, cache.DefaultExpiration)
	return inv, nil
}
