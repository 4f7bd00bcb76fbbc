package astra

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Factory builds a new handle. New is the production factory.
type Factory func(ctx context.Context) (*Client, error)

// Cache lazily builds one handle and hands it out for the rest of the process.
// Concurrent cold callers share a single construction. A failed construction
// is not remembered: the next Get tries again.
type Cache struct {
	build Factory
	name  string
	log   *zap.Logger

	mu     sync.Mutex
	client *Client
	group  singleflight.Group
}

// NewCache returns an empty cache. name labels the cache in logs; it is the
// base path of the endpoint that owns it.
func NewCache(name string, build Factory, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{build: build, name: name, log: log}
}

// FactoryFor adapts Options to a Factory.
func FactoryFor(opts Options, log *zap.Logger) Factory {
	return func(context.Context) (*Client, error) {
		return New(opts, log)
	}
}

// Get returns the cached handle, building it first if needed.
func (c *Cache) Get(ctx context.Context) (*Client, error) {
	if cl := c.cached(); cl != nil {
		return cl, nil
	}

	v, err, _ := c.group.Do("client", func() (interface{}, error) {
		// a caller that lost the race may arrive after the winner stored
		if cl := c.cached(); cl != nil {
			return cl, nil
		}
		cl, err := c.build(ctx)
		if err != nil {
			c.log.Warn("astra handle construction failed", zap.String("base", c.name), zap.Error(err))
			return nil, err
		}
		c.mu.Lock()
		c.client = cl
		c.mu.Unlock()
		c.log.Debug("astra handle created",
			zap.String("base", c.name),
			zap.String("url", cl.BaseURL()))
		return cl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Client), nil
}

func (c *Cache) cached() *Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}
