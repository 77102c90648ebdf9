package api

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dicabi/inmobiliaria/db"
	"github.com/dicabi/inmobiliaria/model"
)

// ModelCache resolves residence model references for populated responses.
// Entries are dropped whenever the model is written or deleted.
type ModelCache struct {
	store db.Store[model.ModelResidence]
	cache *ttlcache.Cache[primitive.ObjectID, model.ModelResidence]

	// gens counts Forget calls per id. A lookup that read the store before a
	// Forget must not cache what it read.
	mu   sync.Mutex
	gens map[primitive.ObjectID]uint64
}

func NewModelCache(store db.Store[model.ModelResidence], ttl time.Duration) *ModelCache {
	cache := ttlcache.New(
		ttlcache.WithTTL[primitive.ObjectID, model.ModelResidence](ttl),
		ttlcache.WithDisableTouchOnHit[primitive.ObjectID, model.ModelResidence](),
	)
	go cache.Start()
	return &ModelCache{store: store, cache: cache, gens: map[primitive.ObjectID]uint64{}}
}

// Lookup returns nil without error for a dangling reference.
func (c *ModelCache) Lookup(ctx context.Context, id primitive.ObjectID) (*model.ModelResidence, error) {
	if item := c.cache.Get(id); item != nil {
		m := item.Value()
		return &m, nil
	}
	gen := c.generation(id)
	m, err := c.store.Get(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gens[id] == gen {
		c.cache.Set(id, *m, ttlcache.DefaultTTL)
	}
	c.mu.Unlock()
	return m, nil
}

func (c *ModelCache) Forget(id primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[id]++
	c.cache.Delete(id)
}

func (c *ModelCache) generation(id primitive.ObjectID) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[id]
}

func (c *ModelCache) Len() int {
	return c.cache.Len()
}

func (c *ModelCache) Stop() {
	c.cache.Stop()
}
