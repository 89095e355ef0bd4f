package linetl

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
)

// adapterMap is a Registry backed by a plain map.
type adapterMap map[Method]Adapter

func (m adapterMap) Adapter(method Method) (Adapter, bool) {
	a, ok := m[method]
	return a, ok
}

// echoAdapter returns the text unchanged.
func echoAdapter() Adapter {
	return AdapterFunc(func(ctx context.Context, p Params) (string, error) {
		return p.Text, nil
	})
}

// upperAdapter uppercases the text, standing in for a real translation.
func upperAdapter(calls *atomic.Int64) Adapter {
	return AdapterFunc(func(ctx context.Context, p Params) (string, error) {
		if calls != nil {
			calls.Add(1)
		}
		return strings.ToUpper(p.Text), nil
	})
}

// mapCache is an in-process TranslationCache for tests.
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
	gets int
	sets int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string]string)}
}

func (c *mapCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
}

func (c *mapCache) Delete(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

func (c *mapCache) Clear(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.data)
	c.data = make(map[string]string)
	return n
}

func (c *mapCache) Count(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// fastConfig returns a runtime config for m without pauses between requests.
func fastConfig(m Method) RuntimeConfig {
	cfg := DefaultRuntimeConfig(m)
	cfg.SourceLang = "en"
	cfg.TargetLang = "de"
	cfg.Provider.DelayTime = 1
	cfg.RetryCount = 0
	return cfg
}
