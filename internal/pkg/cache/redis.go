package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"qindex/internal/config"
)

var (
	// ErrLocked 锁已被其他运行持有
	ErrLocked = errors.New("provisioning lock is held by another run")
	// ErrNotFound key 不存在
	ErrNotFound = errors.New("cache key not found")
)

// releaseScript 仅当值匹配时删除，避免误删其他运行的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCache Redis 缓存封装
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建 Redis 缓存客户端
func NewRedisCache(ctx context.Context, cfg *config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{client: client}, nil
}

// Set 设置缓存
func (c *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get 获取缓存，key 不存在时返回 ErrNotFound
func (c *RedisCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete 删除缓存
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// Exists 检查 key 是否存在
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// Lock 获取锁，token 用于释放时校验持有者
// 锁已存在时返回 ErrLocked
func (c *RedisCache) Lock(ctx context.Context, key, token string, ttl time.Duration) error {
	ok, err := c.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Unlock 释放锁，只有持有者能释放
func (c *RedisCache) Unlock(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, c.client, []string{key}, token).Err()
}

// Close 关闭连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// 常用 key 模式
const (
	LockKeyPrefix    = "qindex:lock:"
	LastRunKeyPrefix = "qindex:last_run:"
	LastRunTTL       = 30 * 24 * time.Hour
)

// LockKey 生成数据库级别的运行锁 key
func LockKey(database string) string {
	return LockKeyPrefix + database
}

// LastRunKey 生成最近一次运行记录的 key
func LastRunKey(database string) string {
	return LastRunKeyPrefix + database
}
