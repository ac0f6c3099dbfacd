package knowledge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"beaglemind-be/internal/pkg/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// CachedRetriever memoises successful retrievals. The in-process go-cache tier is
// always on; the Redis tier is used when a client is supplied so that replicas share hits.
// Failures are never cached.
type CachedRetriever struct {
	next       Retriever
	local      *cache.Cache
	rdb        *redis.Client
	ttl        time.Duration
	collection string
	logger     logger.ILogger
}

var _ Retriever = (*CachedRetriever)(nil)

func NewCachedRetriever(next Retriever, collection string, ttl time.Duration, rdb *redis.Client, log logger.ILogger) *CachedRetriever {
	return &CachedRetriever{
		next:       next,
		local:      cache.New(ttl, 2*ttl),
		rdb:        rdb,
		ttl:        ttl,
		collection: collection,
		logger:     log,
	}
}

func (c *CachedRetriever) Retrieve(ctx context.Context, query string, desiredCount int) (*RetrievalResult, error) {
	key := c.key(query, desiredCount)

	if x, found := c.local.Get(key); found {
		return x.(*RetrievalResult), nil
	}

	if c.rdb != nil {
		raw, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var res RetrievalResult
			if jsonErr := json.Unmarshal(raw, &res); jsonErr == nil {
				c.local.Set(key, &res, cache.DefaultExpiration)
				return &res, nil
			}
		} else if err != redis.Nil {
			c.logger.Debug(logModule, "Redis cache read failed", map[string]interface{}{"error": err.Error()})
		}
	}

	res, err := c.next.Retrieve(ctx, query, desiredCount)
	if err != nil {
		return nil, err
	}

	c.local.Set(key, res, cache.DefaultExpiration)
	if c.rdb != nil {
		if raw, jsonErr := json.Marshal(res); jsonErr == nil {
			if setErr := c.rdb.Set(ctx, key, raw, c.ttl).Err(); setErr != nil {
				c.logger.Debug(logModule, "Redis cache write failed", map[string]interface{}{"error": setErr.Error()})
			}
		}
	}

	return res, nil
}

func (c *CachedRetriever) key(query string, desiredCount int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", c.collection, desiredCount, strings.TrimSpace(query))))
	return "beaglemind:kb:" + hex.EncodeToString(sum[:])
}
