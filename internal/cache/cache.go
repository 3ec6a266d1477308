// Package cache memoizes rendered diagrams keyed by a hash of the request.
package cache

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
)

// Cache stores opaque byte values. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Key hashes the given parts into a stable cache key. Parts are length
// prefixed so ("ab","c") and ("a","bc") differ.
func Key(parts ...[]byte) string {
	h := sha256.New()
	var size [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

type entry struct {
	key   string
	value []byte
}

// Memory is a size-bounded LRU cache safe for concurrent use
type Memory struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	items    map[string]*list.Element
}

// NewMemory returns an LRU holding at most capacity entries. A capacity
// below 1 is treated as 1.
func NewMemory(capacity int) *Memory {
	return &Memory{
		capacity: max(capacity, 1),
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	return el.Value.(*entry).value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		el.Value.(*entry).value = value
		m.order.MoveToFront(el)
		return nil
	}

	m.items[key] = m.order.PushFront(&entry{key: key, value: value})
	for m.order.Len() > m.capacity {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.items, oldest.Value.(*entry).key)
	}
	return nil
}

// Len returns the number of cached entries
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}
