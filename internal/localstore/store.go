// Package localstore is the device-scoped key-value storage guest sessions
// keep their cart and wishlist in. Values are opaque strings (JSON blobs).
package localstore

import (
	"errors"
	"sync"
)

const (
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Store is a synchronous key-value store. Get reports false for a missing key.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// Memory keeps values in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
