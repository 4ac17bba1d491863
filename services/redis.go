package services

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	svcContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisService backs the ranking page cache, the fixed-window rate limiter
// and the completion outbox stream. Every helper is nil-guarded: when redis
// is unreachable the API keeps serving, it just loses caching, limiting and
// deferred stat delivery.
type RedisService struct {
	svcContext.DefaultService
	client *redis.Client

	addr     string
	password string
	db       int
}

const REDIS_SVC = "redis_svc"

func (rs RedisService) Id() string {
	return REDIS_SVC
}

func (rs *RedisService) Configure(ctx *svcContext.Context) error {
	rs.addr = os.Getenv("REDIS_ADDR")
	if rs.addr == "" {
		rs.addr = "localhost:6379"
	}
	rs.password = os.Getenv("REDIS_PASSWORD")

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		db, err := strconv.Atoi(dbStr)
		if err == nil {
			rs.db = db
		}
	}

	return rs.DefaultService.Configure(ctx)
}

func (rs *RedisService) Start() error {
	client := redis.NewClient(&redis.Options{
		Addr:     rs.addr,
		Password: rs.password,
		DB:       rs.db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		return nil
	}

	rs.client = client
	log.Println("Connected to Redis")
	return nil
}

func (rs *RedisService) Shutdown() {
	if rs.client != nil {
		rs.client.Close()
	}
}

func (rs *RedisService) Available() bool {
	return rs.client != nil
}

// ==================== CACHE ====================

func (rs *RedisService) CacheJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if rs.client == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := rs.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.WithError(err).WithField("key", key).Debug("Cache write failed")
	}
}

func (rs *RedisService) GetCachedJSON(ctx context.Context, key string, dest interface{}) bool {
	if rs.client == nil {
		return false
	}
	data, err := rs.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (rs *RedisService) InvalidatePrefix(ctx context.Context, prefix string) {
	if rs.client == nil {
		return
	}
	iter := rs.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		rs.client.Del(ctx, iter.Val())
	}
}

// ==================== RATE LIMITING ====================

// AllowRequest implements a fixed-window counter. Returns true when the
// caller is under limit, and true whenever redis is down.
func (rs *RedisService) AllowRequest(ctx context.Context, key string, limit int, window time.Duration) bool {
	if rs.client == nil {
		return true
	}

	pipe := rs.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.WithError(err).Debug("Rate limit check failed, allowing request")
		return true
	}
	return incr.Val() <= int64(limit)
}

// ==================== OUTBOX STREAM ====================

func (rs *RedisService) PublishStream(ctx context.Context, stream string, values map[string]interface{}) error {
	if rs.client == nil {
		return redis.ErrClosed
	}
	return rs.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 10000,
		Approx: true,
		Values: values,
	}).Err()
}

func (rs *RedisService) ReadStream(ctx context.Context, stream, lastID string, block time.Duration) ([]redis.XMessage, error) {
	if rs.client == nil {
		return nil, redis.ErrClosed
	}
	streams, err := rs.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   10,
		Block:   block,
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}
	return streams[0].Messages, nil
}

func (rs *RedisService) DeleteStreamEntries(ctx context.Context, stream string, ids ...string) {
	if rs.client == nil || len(ids) == 0 {
		return
	}
	rs.client.XDel(ctx, stream, ids...)
}
