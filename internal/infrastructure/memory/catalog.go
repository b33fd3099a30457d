package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
)

// seatCounter é o contador de um par (evento, tipo de vaga).
// O mutex do contador é a seção crítica de TryReserveSeat/ReleaseSeat;
// contadores de pares diferentes nunca disputam o mesmo lock.
type seatCounter struct {
	mu       sync.Mutex
	total    int
	reserved int
}

// Catalog é a implementação em memória do catálogo de eventos.
// Usada nos testes de cenário e como modo de execução sem banco.
type Catalog struct {
	mu       sync.RWMutex
	events   map[string]*event.Event
	counters map[string]*seatCounter
	nextID   int
}

func NewCatalog() *Catalog {
	return &Catalog{
		events:   make(map[string]*event.Event),
		counters: make(map[string]*seatCounter),
	}
}

func counterKey(eventID string, t event.SeatType) string {
	return eventID + "/" + string(t)
}

func (c *Catalog) Create(ctx context.Context, e *event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e.ID == "" {
		c.nextID++
		e.ID = "event-" + strconv.Itoa(c.nextID)
	}
	if _, ok := c.events[e.ID]; ok {
		return fmt.Errorf("evento %s já existe", e.ID)
	}

	clone := cloneEvent(e)
	c.events[e.ID] = clone
	for _, t := range event.SeatTypes {
		p := clone.Pool(t)
		c.counters[counterKey(e.ID, t)] = &seatCounter{total: p.Total, reserved: p.Reserved}
	}
	return nil
}

func (c *Catalog) GetByID(ctx context.Context, id string) (*event.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.events[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return c.snapshot(e), nil
}

func (c *Catalog) List(ctx context.Context, limit, offset int) ([]*event.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	all := make([]*event.Event, 0, len(c.events))
	for _, e := range c.events {
		all = append(all, c.snapshot(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OpensAt.After(all[j].OpensAt) })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (c *Catalog) ListOpen(ctx context.Context, now time.Time, limit int) ([]*event.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var open []*event.Event
	for _, e := range c.events {
		if e.IsRegistrationOpen(now) {
			open = append(open, c.snapshot(e))
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ClosesAt.Before(open[j].ClosesAt) })
	if len(open) > limit {
		open = open[:limit]
	}
	return open, nil
}

func (c *Catalog) Update(ctx context.Context, e *event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.events[e.ID]
	if !ok {
		return event.ErrEventNotFound
	}
	if current.Version != e.Version {
		return event.ErrOptimisticLockConflict
	}

	for _, t := range event.SeatTypes {
		counter := c.counters[counterKey(e.ID, t)]
		counter.mu.Lock()
		reserved := counter.reserved
		newTotal := e.Pool(t).Total
		if newTotal < reserved {
			counter.mu.Unlock()
			return event.ErrSeatTotalBelowReserved
		}
		counter.total = newTotal
		counter.mu.Unlock()
	}

	clone := cloneEvent(e)
	clone.Version = e.Version + 1
	clone.UpdatedAt = time.Now()
	c.events[e.ID] = clone
	e.Version = clone.Version
	return nil
}

func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.events[id]; !ok {
		return event.ErrEventNotFound
	}
	delete(c.events, id)
	for _, t := range event.SeatTypes {
		delete(c.counters, counterKey(id, t))
	}
	return nil
}

// TryReserveSeat verifica e incrementa o contador sob o mutex do par
// (eventID, seatType); a disputa fica restrita a esse par.
func (c *Catalog) TryReserveSeat(ctx context.Context, eventID string, seatType event.SeatType) error {
	if !seatType.Valid() {
		return event.ErrInvalidSeatType
	}

	c.mu.RLock()
	counter, ok := c.counters[counterKey(eventID, seatType)]
	c.mu.RUnlock()
	if !ok {
		return event.ErrEventNotFound
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()
	if counter.reserved >= counter.total {
		return event.ErrNoSeatsAvailable
	}
	counter.reserved++
	return nil
}

// ReleaseSeat decrementa o contador do par, nunca abaixo de zero
func (c *Catalog) ReleaseSeat(ctx context.Context, eventID string, seatType event.SeatType) error {
	if !seatType.Valid() {
		return event.ErrInvalidSeatType
	}

	c.mu.RLock()
	counter, ok := c.counters[counterKey(eventID, seatType)]
	c.mu.RUnlock()
	if !ok {
		return event.ErrEventNotFound
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()
	if counter.reserved == 0 {
		return event.ErrNoReservedSeats
	}
	counter.reserved--
	return nil
}

// snapshot monta uma cópia do evento com os valores atuais dos contadores.
// Chamar com c.mu já adquirido.
func (c *Catalog) snapshot(e *event.Event) *event.Event {
	clone := cloneEvent(e)
	for _, t := range event.SeatTypes {
		if counter, ok := c.counters[counterKey(e.ID, t)]; ok {
			counter.mu.Lock()
			clone.Pools[t] = event.SeatPool{Total: counter.total, Reserved: counter.reserved}
			counter.mu.Unlock()
		}
	}
	return clone
}

func cloneEvent(e *event.Event) *event.Event {
	clone := *e
	clone.Pools = make(map[event.SeatType]event.SeatPool, len(e.Pools))
	for t, p := range e.Pools {
		clone.Pools[t] = p
	}
	return &clone
}

var _ event.Repository = (*Catalog)(nil)
