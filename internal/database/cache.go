package database

import (
	"context"
	"encoding/json"
	"fmt"
	"subsidy/config"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	cacheDBGeneral = iota
	cacheDBSession
	cacheDBUser
	cacheDBEvents
	cacheDBRequest
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")

	if config.DatabaseCacheAddress == "" || config.DatabaseCachePort == 0 {
		return log.Error(
			"cache address or port is empty",
			"address", config.DatabaseCacheAddress,
			"port", config.DatabaseCachePort,
		)
	}

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)

	clients := []struct {
		target *CacheClient
		db     int
		name   string
	}{
		{&s.Cache.General, cacheDBGeneral, "General"},
		{&s.Cache.Session, cacheDBSession, "Session"},
		{&s.Cache.User, cacheDBUser, "User"},
		{&s.Cache.Events, cacheDBEvents, "Events"},
		{&s.Cache.Request, cacheDBRequest, "Request"},
	}

	for _, entry := range clients {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{address},
			SelectDB:    entry.db,
		})
		if err != nil {
			return log.Err("failed to create cache client", err, "cache", entry.name)
		}
		*entry.target = client
	}

	log.Info("Cache clients initialized", "address", address)
	return nil
}

type CacheItem[T any] struct {
	Cache       CacheClient
	Key         string
	Value       T
	Expiry      *time.Duration
	HashPattern *string
}

func (c CacheItem[T]) cacheKey() string {
	if c.HashPattern != nil {
		return fmt.Sprintf(*c.HashPattern, c.Key)
	}
	return c.Key
}

func (c CacheItem[T]) SetValue(ctx context.Context) error {
	payload, err := json.Marshal(c.Value)
	if err != nil {
		return err
	}

	cmd := c.Cache.B().Set().Key(c.cacheKey()).Value(string(payload))
	if c.Expiry != nil {
		return c.Cache.Do(ctx, cmd.Ex(*c.Expiry).Build()).Error()
	}
	return c.Cache.Do(ctx, cmd.Build()).Error()
}

func (c CacheItem[T]) DeleteCachedValue(ctx context.Context) error {
	return c.Cache.Do(ctx, c.Cache.B().Del().Key(c.cacheKey()).Build()).Error()
}

// CacheBuilder is the fluent front over CacheItem used by the repositories.
type CacheBuilder struct {
	cache CacheClient
	key   string
	value any
	ttl   *time.Duration
	ctx   context.Context
}

func NewCacheBuilder(cache CacheClient, key string) *CacheBuilder {
	return &CacheBuilder{
		cache: cache,
		key:   key,
		ctx:   context.Background(),
	}
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = &ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	b.ctx = ctx
	return b
}

func (b *CacheBuilder) Set() error {
	if b.cache == nil {
		return fmt.Errorf("cache client is nil")
	}

	payload, err := json.Marshal(b.value)
	if err != nil {
		return err
	}

	cmd := b.cache.B().Set().Key(b.key).Value(string(payload))
	if b.ttl != nil {
		return b.cache.Do(b.ctx, cmd.Ex(*b.ttl).Build()).Error()
	}
	return b.cache.Do(b.ctx, cmd.Build()).Error()
}

// Get unmarshals the cached value into dest. The bool reports whether the key
// existed; a miss is not an error.
func (b *CacheBuilder) Get(dest any) (bool, error) {
	if b.cache == nil {
		return false, fmt.Errorf("cache client is nil")
	}

	resp := b.cache.Do(b.ctx, b.cache.B().Get().Key(b.key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	payload, err := resp.AsBytes()
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}

	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.cache == nil {
		return fmt.Errorf("cache client is nil")
	}
	return b.cache.Do(b.ctx, b.cache.B().Del().Key(b.key).Build()).Error()
}
