package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrNoChange can be returned by an Update callback to commit nothing while
// still reporting success to the caller.
var ErrNoChange = errors.New("no change")

// Collection binds one store key to a Go shape and serializes every
// read-modify-write cycle against it.
//
// The underlying store has no transactions, so two interleaved
// load-mutate-save cycles against the same key would silently drop the
// first writer's changes. Funnelling all writers for a key through one
// mutex keeps the "last writer wins per collection" contract while closing
// that lost-update window. There is no coordination across different keys.
type Collection[T any] struct {
	store Store
	key   string
	fresh func() T
	mu    sync.Mutex
}

// NewCollection wires a key to its decoded shape. fresh must return the
// empty value of the collection (empty slice, empty map) so absent and
// unreadable documents degrade to "no data" instead of blocking reads.
func NewCollection[T any](store Store, key string, fresh func() T) *Collection[T] {
	return &Collection[T]{store: store, key: key, fresh: fresh}
}

// Key returns the store key this collection lives under.
func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the decoded document. A missing or undecodable document
// comes back as a fresh empty value; only the store's own failure to
// answer is an error.
func (c *Collection[T]) Load(ctx context.Context) (T, error) {
	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		// Degrade to empty rather than blocking every caller on a broken
		// read; the next successful write restores a usable document.
		log.Printf("blob: get %q: %v", c.key, err)
		return c.fresh(), nil
	}
	if raw == nil {
		return c.fresh(), nil
	}
	v := c.fresh()
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("blob: decode %q: %v", c.key, err)
		return c.fresh(), nil
	}
	return v, nil
}

// Save replaces the whole document.
func (c *Collection[T]) Save(ctx context.Context, v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.save(ctx, v)
}

// Update runs one serialized read-modify-write cycle: load the whole
// collection, hand it to fn, persist the result. If fn returns an error
// nothing is written; ErrNoChange skips the write and reports success.
func (c *Collection[T]) Update(ctx context.Context, fn func(v *T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		if errors.Is(err, ErrNoChange) {
			return nil
		}
		return err
	}
	return c.save(ctx, v)
}

func (c *Collection[T]) save(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("write %q: %w", c.key, err)
	}
	return nil
}
