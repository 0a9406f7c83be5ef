// Package cache keeps large read-only objects, such as weight tables
// loaded from disk, so each is read once per process.
package cache

import (
	"sync"

	"github.com/rs/zerolog/log"
)

type loadFunc func(key string) (any, error)

type cache struct {
	sync.Mutex
	objects map[string]any
}

// GlobalObjectCache is shared by everything in the process.
var GlobalObjectCache *cache

func (c *cache) get(key string, load loadFunc) (any, error) {
	c.Lock()
	defer c.Unlock()
	if obj, ok := c.objects[key]; ok {
		log.Debug().Str("key", key).Msg("getting-obj-from-cache")
		return obj, nil
	}
	log.Debug().Str("key", key).Msg("loading-into-cache")
	obj, err := load(key)
	if err != nil {
		return nil, err
	}
	c.objects[key] = obj
	return obj, nil
}

func (c *cache) evict(key string) {
	c.Lock()
	defer c.Unlock()
	delete(c.objects, key)
}

func CreateGlobalObjectCache() {
	GlobalObjectCache = &cache{objects: make(map[string]any)}
}

// Load returns the object cached under key, calling load to create it the
// first time. Failed loads are not cached.
func Load(key string, load loadFunc) (any, error) {
	if GlobalObjectCache == nil {
		CreateGlobalObjectCache()
	}
	return GlobalObjectCache.get(key, load)
}

// Evict forgets key, for when the file behind it has changed.
func Evict(key string) {
	if GlobalObjectCache == nil {
		return
	}
	GlobalObjectCache.evict(key)
}
