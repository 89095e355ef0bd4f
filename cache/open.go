package cache

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend   string `yaml:"backend,omitempty"`   // sqlite (default), redis, memory or none
	Path      string `yaml:"path,omitempty"`      // SQLite file; empty uses DefaultPath
	RedisURL  string `yaml:"redisUrl,omitempty"`  // e.g. redis://localhost:6379/0
	Namespace string `yaml:"namespace,omitempty"` // Redis key namespace
	TTL       int    `yaml:"ttl,omitempty"`       // seconds, memory and redis only
}

// Open returns the backend described by opts. A backend that cannot be
// opened is replaced by Nop, so translation keeps working without a cache.
func Open(ctx context.Context, opts Options, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := OpenStrict(ctx, opts, logger)
	if err != nil {
		logger.Warn("cache unavailable, continuing without it",
			zap.String("backend", opts.Backend), zap.Error(err))
		return Nop{}
	}
	return store
}

// OpenStrict is like Open but reports a backend that cannot be opened.
func OpenStrict(ctx context.Context, opts Options, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(opts.Backend) {
	case "", BackendSQLite:
		p := opts.Path
		if p == "" {
			var err error
			if p, err = DefaultPath(); err != nil {
				return nil, err
			}
		}
		return OpenSQLite(p, logger)
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis backend needs a URL")
		}
		return NewRedisCache(ctx, RedisConfig{URL: opts.RedisURL, TTL: opts.TTL, Namespace: opts.Namespace}, logger)
	case BackendMemory:
		return NewInMemoryCache(opts.TTL), nil
	case BackendNone:
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
}
