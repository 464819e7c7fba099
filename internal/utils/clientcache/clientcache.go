// Package clientcache keeps provider SDK clients keyed by the fingerprint of
// the configuration they were built from.
package clientcache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Pool holds one client per configuration fingerprint. Concurrent requests for
// the same fingerprint share a single build.
type Pool[T any] struct {
	mu      sync.RWMutex
	clients map[string]T
	sfGroup singleflight.Group
}

// NewPool creates an empty pool
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{clients: make(map[string]T)}
}

// Acquire returns the client for key, building it with build on first use.
func (p *Pool[T]) Acquire(key string, build func() (T, error)) (T, error) {
	p.mu.RLock()
	client, ok := p.clients[key]
	p.mu.RUnlock()
	if ok {
		return client, nil
	}

	v, err, _ := p.sfGroup.Do(key, func() (any, error) {
		p.mu.RLock()
		cached, ok := p.clients[key]
		p.mu.RUnlock()
		if ok {
			return cached, nil
		}

		built, err := build()
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.clients[key] = built
		p.mu.Unlock()
		return built, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return v.(T), nil
}

// Retain drops every client except the ones stored under keep.
func (p *Pool[T]) Retain(keep ...string) {
	wanted := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		wanted[k] = struct{}{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.clients {
		if _, ok := wanted[key]; !ok {
			delete(p.clients, key)
		}
	}
}

// Len returns the number of cached clients.
func (p *Pool[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}

// Fingerprint hashes v's JSON form. Callers must replace secrets with their
// own hashes (see HashSecret) before passing them in.
func Fingerprint(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint client config: %w", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:16]), nil
}

// HashSecret returns a short digest that identifies a secret without exposing it.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return fmt.Sprintf("%x", sum[:8])
}
