package docqa

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"multimodal-assistant-be/pkg/llm"
)

// HistoryStore is the conversation memory of the chatbot. Append keeps only
// the newest window messages of a key.
type HistoryStore interface {
	Load(ctx context.Context, key string) ([]llm.Message, error)
	Append(ctx context.Context, key string, msgs ...llm.Message) error
	Clear(ctx context.Context, key string) error
}

// CacheHistory keeps conversation memory in process
type CacheHistory struct {
	mu     sync.Mutex
	cache  *cache.Cache
	window int
}

func NewCacheHistory(window int, ttl time.Duration) *CacheHistory {
	return &CacheHistory{
		cache:  cache.New(ttl, 10*time.Minute),
		window: window,
	}
}

func (h *CacheHistory) Load(_ context.Context, key string) ([]llm.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if x, found := h.cache.Get(key); found {
		msgs := x.([]llm.Message)
		out := make([]llm.Message, len(msgs))
		copy(out, msgs)
		return out, nil
	}
	return []llm.Message{}, nil
}

func (h *CacheHistory) Append(_ context.Context, key string, msgs ...llm.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var current []llm.Message
	if x, found := h.cache.Get(key); found {
		current = x.([]llm.Message)
	}
	next := make([]llm.Message, 0, len(current)+len(msgs))
	next = append(next, current...)
	next = append(next, msgs...)
	h.cache.Set(key, trimWindow(next, h.window), cache.DefaultExpiration)
	return nil
}

func (h *CacheHistory) Clear(_ context.Context, key string) error {
	h.cache.Delete(key)
	return nil
}

// RedisHistory keeps conversation memory in a Redis list so it survives
// restarts and is shared between replicas.
type RedisHistory struct {
	rdb    redis.Cmdable
	window int
	ttl    time.Duration
}

func NewRedisHistory(rdb redis.Cmdable, window int, ttl time.Duration) *RedisHistory {
	return &RedisHistory{rdb: rdb, window: window, ttl: ttl}
}

func (h *RedisHistory) Load(ctx context.Context, key string) ([]llm.Message, error) {
	raw, err := h.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	msgs := make([]llm.Message, 0, len(raw))
	for _, r := range raw {
		var m llm.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (h *RedisHistory) Append(ctx context.Context, key string, msgs ...llm.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, b)
	}

	pipe := h.rdb.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if h.window > 0 {
		pipe.LTrim(ctx, key, int64(-h.window), -1)
	}
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (h *RedisHistory) Clear(ctx context.Context, key string) error {
	return h.rdb.Del(ctx, key).Err()
}

func trimWindow(msgs []llm.Message, window int) []llm.Message {
	if window > 0 && len(msgs) > window {
		return msgs[len(msgs)-window:]
	}
	return msgs
}
