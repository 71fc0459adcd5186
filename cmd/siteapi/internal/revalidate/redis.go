package revalidate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces render cache keys.
const DefaultKeyPrefix = "site:render:"

// Each path is a hash {body, content_type, stamp, tomb}. stamp is the render
// start (or invalidation) time in unix microseconds; writes with an older
// stamp are ignored.
const putLua = `
local stamp = tonumber(redis.call('HGET', KEYS[1], 'stamp') or '0')
if stamp > tonumber(ARGV[3]) then
  return 0
end
redis.call('HSET', KEYS[1], 'body', ARGV[1], 'content_type', ARGV[2], 'stamp', ARGV[3], 'tomb', ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`

var putScript = redis.NewScript(putLua)

// RedisCache keeps pages in Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	// tombstoneTTL bounds how long an invalidation marker outlives the write.
	tombstoneTTL time.Duration
}

// NewRedisCache connects to the Redis server at url (redis://...).
func NewRedisCache(ctx context.Context, url string, tombstoneTTL time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if tombstoneTTL <= 0 {
		tombstoneTTL = time.Hour
	}
	return &RedisCache{client: client, prefix: DefaultKeyPrefix, tombstoneTTL: tombstoneTTL}, nil
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) key(path string) string {
	return c.prefix + path
}

func (c *RedisCache) Get(ctx context.Context, path string) (*Page, bool, error) {
	fields, err := c.client.HGetAll(ctx, c.key(path)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get render cache %s: %w", path, err)
	}
	if len(fields) == 0 || fields["tomb"] == "1" {
		return nil, false, nil
	}
	return &Page{Body: []byte(fields["body"]), ContentType: fields["content_type"]}, true, nil
}

func (c *RedisCache) Put(ctx context.Context, path string, page Page, renderedAt time.Time, ttl time.Duration) error {
	err := putScript.Run(ctx, c.client, []string{c.key(path)},
		page.Body, page.ContentType, strconv.FormatInt(renderedAt.UnixMicro(), 10), "0", ttl.Milliseconds(),
	).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("put render cache %s: %w", path, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, at time.Time, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	stamp := strconv.FormatInt(at.UnixMicro(), 10)
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, path := range paths {
			pipe.Eval(ctx, putLua, []string{c.key(path)}, "", "", stamp, "1", c.tombstoneTTL.Milliseconds())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate render cache: %w", err)
	}
	return nil
}

var _ PageCache = (*RedisCache)(nil)
