// Package dedupe guards against the same submission being processed twice at
// the same time.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

const defaultMaxSize = 10_000

// Deduper tracks submission keys currently being processed.
type Deduper interface {
	// SeenAndRecord atomically claims key. It returns true when key is
	// already claimed and false when this call claimed it.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord releases key so a later submission may claim it.
	Unrecord(ctx context.Context, key string)

	// Size returns the number of claimed keys.
	Size() int64
}

// inMemoryDeduper holds claims in a map with FIFO eviction once maxSize is
// reached. A maxSize of zero or less means unbounded.
type inMemoryDeduper struct {
	mu      sync.Mutex
	claims  map[string]*list.Element
	order   *list.List
	maxSize int
}

// NewInMemoryDeduper creates a new in-memory deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.claims = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.claims[key]; ok {
		return true
	}
	if d.maxSize > 0 && len(d.claims) >= d.maxSize {
		// Oldest claim goes first.
		if front := d.order.Front(); front != nil {
			delete(d.claims, front.Value.(string))
			d.order.Remove(front)
		}
	}
	d.claims[key] = d.order.PushBack(key)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.claims[key]; ok {
		d.order.Remove(el)
		delete(d.claims, key)
	}
}

func (d *inMemoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.claims))
}
