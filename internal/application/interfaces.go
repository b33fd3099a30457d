package application

import (
	"context"
	"time"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	redisinfra "github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/redis"
)

// DistributedLock é o lock adquirido para uma operação
type DistributedLock interface {
	Release(ctx context.Context) error
}

// LockManager obtém locks distribuídos por chave
type LockManager interface {
	AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (DistributedLock, error)
}

// AvailabilityCache guarda as vagas restantes por evento
type AvailabilityCache interface {
	Get(ctx context.Context, eventID string) (map[event.SeatType]int, error)
	Set(ctx context.Context, eventID string, availability map[event.SeatType]int, ttl time.Duration) error
	Invalidate(ctx context.Context, eventID string) error
}

// redisLockManager adapta o LockManager do Redis à interface local
type redisLockManager struct {
	m *redisinfra.LockManager
}

// NewRedisLockManager embrulha o LockManager do Redis
func NewRedisLockManager(m *redisinfra.LockManager) LockManager {
	return &redisLockManager{m: m}
}

func (a *redisLockManager) AcquireLockWithRetry(ctx context.Context, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (DistributedLock, error) {
	lock, err := a.m.AcquireLockWithRetry(ctx, key, ttl, maxRetries, retryDelay)
	if err != nil {
		return nil, err
	}
	return lock, nil
}
