package ratelimit

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter ventana fija en memoria del proceso (go-cache). Solo válido con una réplica.
type MemoryLimiter struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	max    int
	window time.Duration
}

// NewMemoryLimiter max intentos por ventana y clave.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		cache:  gocache.New(window, 2*window),
		max:    max,
		window: window,
	}
}

// Allow cuenta el intento. Devuelve false y el tiempo restante de la ventana si se superó el máximo.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.cache.Add(key, 1, l.window); err == nil {
		return true, 0, nil
	}
	n, err := l.cache.IncrementInt(key, 1)
	if err != nil {
		// expiró entre Add e Increment: abre una ventana nueva
		l.cache.Set(key, 1, l.window)
		return true, 0, nil
	}
	if n <= l.max {
		return true, 0, nil
	}
	_, exp, _ := l.cache.GetWithExpiration(key)
	retry := time.Until(exp)
	if retry <= 0 {
		retry = l.window
	}
	return false, retry, nil
}

// Reset borra el contador de la clave.
func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.cache.Delete(key)
	return nil
}
