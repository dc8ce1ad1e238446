// Package ratelimit implementa el límite de intentos de login: ventana fija en Redis
// para despliegues con varias réplicas y un contador en memoria para un solo nodo.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter ventana fija (INCR + EXPIRE) compartida entre réplicas.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int64
	window time.Duration
}

// NewRedisLimiter max intentos por ventana y clave.
func NewRedisLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) key(k string) string {
	return l.prefix + strings.ReplaceAll(k, " ", "_")
}

// Allow cuenta el intento. Devuelve false y el TTL restante de la ventana si se superó el máximo.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rk := l.key(key)
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, rk)
	ttl := pipe.TTL(ctx, rk)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}

	// primer intento de la ventana: fijar expiración
	if incr.Val() == 1 || ttl.Val() < 0 {
		if err := l.client.Expire(ctx, rk, l.window).Err(); err != nil {
			return false, 0, err
		}
	}
	if incr.Val() <= l.max {
		return true, 0, nil
	}
	retry := ttl.Val()
	if retry <= 0 {
		retry = l.window
	}
	return false, retry, nil
}

// Reset borra el contador de la clave.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}

// NewRedisClient cliente Redis verificado con PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
