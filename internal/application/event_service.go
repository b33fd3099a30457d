package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
	redisinfra "github.com/pet-informatica-uem/site-pet-backend-sub000/internal/infrastructure/redis"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/logger"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/metrics"
)

const (
	availabilityCacheTTL  = 30 * time.Second
	availabilityListLimit = 100
)

// EventService cuida do fluxo administrativo de eventos e da consulta de
// disponibilidade. Os contadores de reserva nunca são escritos por aqui.
type EventService struct {
	catalog event.Repository
	ledger  registration.Repository
	cache   AvailabilityCache
}

// NewEventService cria um EventService; cache é opcional (nil desativa)
func NewEventService(catalog event.Repository, ledger registration.Repository, cache AvailabilityCache) *EventService {
	return &EventService{catalog: catalog, ledger: ledger, cache: cache}
}

// CreateEventInput são os dados de criação de evento
type CreateEventInput struct {
	Title              string
	Venue              string
	Price              int
	OpensAt            time.Time
	ClosesAt           time.Time
	TotalWithDevice    int
	TotalWithoutDevice int
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*event.Event, error) {
	e := event.NewEvent(input.Title, input.Venue, input.Price, input.OpensAt, input.ClosesAt,
		input.TotalWithDevice, input.TotalWithoutDevice)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.catalog.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("falha ao criar evento: %w", err)
	}
	return e, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*event.Event, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.catalog.List(ctx, limit, offset)
}

// UpdateEventInput são os dados de atualização de evento
type UpdateEventInput struct {
	ID                 string
	Title              string
	Venue              string
	Price              int
	OpensAt            time.Time
	ClosesAt           time.Time
	TotalWithDevice    int
	TotalWithoutDevice int
}

// UpdateEvent atualiza os metadados do evento.
// O novo total de cada contador tem de comportar as reservas atuais.
func (s *EventService) UpdateEvent(ctx context.Context, input UpdateEventInput) (*event.Event, error) {
	e, err := s.catalog.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	e.Title = input.Title
	e.Venue = input.Venue
	e.Price = input.Price
	e.OpensAt = input.OpensAt
	e.ClosesAt = input.ClosesAt
	e.Pools[event.SeatTypeWithDevice] = event.SeatPool{
		Total:    input.TotalWithDevice,
		Reserved: e.Pool(event.SeatTypeWithDevice).Reserved,
	}
	e.Pools[event.SeatTypeWithoutDevice] = event.SeatPool{
		Total:    input.TotalWithoutDevice,
		Reserved: e.Pool(event.SeatTypeWithoutDevice).Reserved,
	}

	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.catalog.Update(ctx, e); err != nil {
		return nil, err
	}

	s.invalidate(ctx, e.ID)
	return e, nil
}

// DeleteEvent remove um evento sem inscrições
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	count, err := s.ledger.CountByEvent(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return event.ErrEventHasRegistrations
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Availability retorna as vagas restantes por tipo, com cache de leitura
func (s *EventService) Availability(ctx context.Context, eventID string) (map[event.SeatType]int, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, eventID)
		if err == nil {
			logger.Debug("disponibilidade servida do cache", zap.String("event_id", eventID))
			return cached, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("falha ao ler cache de disponibilidade", zap.Error(err))
		}
	}

	e, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	availability := e.Availability()

	if s.cache != nil {
		if err := s.cache.Set(ctx, eventID, availability, availabilityCacheTTL); err != nil {
			logger.Warn("falha ao gravar cache de disponibilidade", zap.Error(err))
		}
	}
	s.gaugeAvailability(eventID, availability)

	return availability, nil
}

// RefreshOpenEventAvailability reaquece o cache dos eventos com inscrições
// abertas. Chamado periodicamente pelo worker; retorna quantos eventos foram
// atualizados.
func (s *EventService) RefreshOpenEventAvailability(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	open, err := s.catalog.ListOpen(ctx, time.Now(), availabilityListLimit)
	if err != nil {
		return 0, fmt.Errorf("falha ao listar eventos abertos: %w", err)
	}

	refreshed := 0
	for _, e := range open {
		availability := e.Availability()
		if err := s.cache.Set(ctx, e.ID, availability, availabilityCacheTTL); err != nil {
			logger.Warn("falha ao reaquecer cache de disponibilidade",
				zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		s.gaugeAvailability(e.ID, availability)
		refreshed++
	}
	return refreshed, nil
}

func (s *EventService) invalidate(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("falha ao invalidar cache de disponibilidade",
			zap.String("event_id", eventID), zap.Error(err))
	}
}

func (s *EventService) gaugeAvailability(eventID string, availability map[event.SeatType]int) {
	m := metrics.Get()
	if m == nil {
		return
	}
	for t, count := range availability {
		m.AvailableSeats.WithLabelValues(eventID, string(t)).Set(float64(count))
	}
}
