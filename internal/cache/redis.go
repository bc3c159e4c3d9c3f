package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmsdash/internal/config"
	"github.com/cmsdash/internal/db"
	"github.com/redis/go-redis/v9"
)

// Redis stores single posts and pages as JSON strings with a TTL.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New returns a redis-backed cache when enabled, otherwise Noop.
func New(cfg config.RedisConfig) Cache {
	if !cfg.Enabled {
		return Noop{}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedis(client, cfg.Prefix, time.Duration(cfg.TTLSeconds)*time.Second)
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "cmsdash"
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Ping 检查 redis 连接是否可用
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) postKey(id uint) string {
	return fmt.Sprintf("%s:post:%d", r.prefix, id)
}

func (r *Redis) pageKey(slug string) string {
	return fmt.Sprintf("%s:page:%s", r.prefix, slug)
}

func (r *Redis) GetPost(ctx context.Context, id uint) (*db.Post, error) {
	var post db.Post
	if err := r.get(ctx, r.postKey(id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *Redis) SetPost(ctx context.Context, post *db.Post) error {
	return r.set(ctx, r.postKey(post.ID), post)
}

func (r *Redis) InvalidatePost(ctx context.Context, id uint) error {
	return r.client.Del(ctx, r.postKey(id)).Err()
}

func (r *Redis) GetPage(ctx context.Context, slug string) (*db.Page, error) {
	var page db.Page
	if err := r.get(ctx, r.pageKey(slug), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (r *Redis) SetPage(ctx context.Context, page *db.Page) error {
	return r.set(ctx, r.pageKey(page.Slug), page)
}

func (r *Redis) InvalidatePage(ctx context.Context, slug string) error {
	return r.client.Del(ctx, r.pageKey(slug)).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) get(ctx context.Context, key string, dst interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}
	return nil
}

func (r *Redis) set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
