package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
)

var ErrCacheMiss = errors.New("disponibilidade não encontrada no cache")

// AvailabilityCache guarda as vagas restantes de cada evento.
// A disponibilidade é um hash por evento com um campo por tipo de vaga.
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache cria um AvailabilityCache
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// Get retorna as vagas restantes por tipo a partir do cache
func (c *AvailabilityCache) Get(ctx context.Context, eventID string) (map[event.SeatType]int, error) {
	key := c.availabilityKey(eventID)
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("falha ao ler cache de disponibilidade: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrCacheMiss
	}

	out := make(map[event.SeatType]int, len(fields))
	for field, raw := range fields {
		t := event.SeatType(field)
		if !t.Valid() {
			continue
		}
		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("cache de disponibilidade corrompido: %w", err)
		}
		out[t] = count
	}
	return out, nil
}

// Set grava as vagas restantes por tipo com prazo de expiração
func (c *AvailabilityCache) Set(ctx context.Context, eventID string, availability map[event.SeatType]int, ttl time.Duration) error {
	key := c.availabilityKey(eventID)

	fields := make(map[string]interface{}, len(availability))
	for t, count := range availability {
		fields[string(t)] = count
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("falha ao gravar cache de disponibilidade: %w", err)
	}
	return nil
}

// Invalidate remove a disponibilidade do evento do cache
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, c.availabilityKey(eventID)).Err(); err != nil {
		return fmt.Errorf("falha ao invalidar cache de disponibilidade: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) availabilityKey(eventID string) string {
	return fmt.Sprintf("availability:%s", eventID)
}
