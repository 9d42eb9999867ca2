// Package tokencache stores derived token metadata keyed by
// (network, contract id). Only derived records are cached here; raw events
// are never persisted.
package tokencache

import (
	"context"
	"sync"

	"activityScope/internal/model"
)

// Cache is the key-value collaborator interface: a nil result with a nil
// error means "not cached".
type Cache interface {
	Get(ctx context.Context, network, contractID string) (*model.TokenMeta, error)
	Set(ctx context.Context, network, contractID string, meta model.TokenMeta) error
}

// Memory is an in-process Cache.
type Memory struct {
	mu   sync.RWMutex
	data map[string]model.TokenMeta
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]model.TokenMeta)}
}

func cacheKey(network, contractID string) string {
	return network + ":" + contractID
}

func (m *Memory) Get(_ context.Context, network, contractID string) (*model.TokenMeta, error) {
	m.mu.RLock()
	meta, ok := m.data[cacheKey(network, contractID)]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &meta, nil
}

func (m *Memory) Set(_ context.Context, network, contractID string, meta model.TokenMeta) error {
	m.mu.Lock()
	m.data[cacheKey(network, contractID)] = meta
	m.mu.Unlock()
	return nil
}
