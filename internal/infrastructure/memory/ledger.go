package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
)

// Ledger é a implementação em memória do livro de inscrições.
// Create verifica e insere sob o mesmo lock, fechando a corrida de
// inscrição duplicada como a chave primária faz no PostgreSQL.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]*registration.Registration
}

func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*registration.Registration)}
}

func ledgerKey(eventID, userID string) string {
	return eventID + "/" + userID
}

func (l *Ledger) Create(ctx context.Context, reg *registration.Registration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(reg.EventID, reg.UserID)
	if _, ok := l.records[key]; ok {
		return registration.ErrAlreadyRegistered
	}
	clone := *reg
	l.records[key] = &clone
	return nil
}

func (l *Ledger) Exists(ctx context.Context, eventID, userID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.records[ledgerKey(eventID, userID)]
	return ok, nil
}

func (l *Ledger) Get(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	reg, ok := l.records[ledgerKey(eventID, userID)]
	if !ok {
		return nil, registration.ErrRegistrationNotFound
	}
	clone := *reg
	return &clone, nil
}

// MarkPaid confirma o pagamento sob o lock do livro; apenas o campo de
// pagamento muda, então uma presença concorrente nunca é desfeita.
func (l *Ledger) MarkPaid(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.records[ledgerKey(eventID, userID)]
	if !ok {
		return nil, registration.ErrRegistrationNotFound
	}
	reg.MarkPaid()
	clone := *reg
	return &clone, nil
}

// MarkPresent decide e grava a presença sob o mesmo lock, espelhando o
// UPDATE condicional do PostgreSQL.
func (l *Ledger) MarkPresent(ctx context.Context, eventID, userID string, requirePaid bool) (*registration.Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.records[ledgerKey(eventID, userID)]
	if !ok {
		return nil, registration.ErrRegistrationNotFound
	}
	if err := reg.MarkPresent(requirePaid); err != nil {
		return nil, err
	}
	clone := *reg
	return &clone, nil
}

func (l *Ledger) ChangeSeatType(ctx context.Context, eventID, userID string, newType event.SeatType) (event.SeatType, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reg, ok := l.records[ledgerKey(eventID, userID)]
	if !ok {
		return "", registration.ErrRegistrationNotFound
	}
	if reg.Present {
		return "", registration.ErrRegistrationConcluded
	}
	prev := reg.SeatType
	reg.SeatType = newType
	return prev, nil
}

func (l *Ledger) Delete(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := ledgerKey(eventID, userID)
	reg, ok := l.records[key]
	if !ok {
		return nil, registration.ErrRegistrationNotFound
	}
	if reg.Present {
		return nil, registration.ErrRegistrationConcluded
	}
	delete(l.records, key)
	clone := *reg
	return &clone, nil
}

func (l *Ledger) ListByEvent(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var result []*registration.Registration
	for _, reg := range l.records {
		if reg.EventID == eventID {
			clone := *reg
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RegisteredAt.Before(result[j].RegisteredAt)
	})
	return result, nil
}

func (l *Ledger) CountByEvent(ctx context.Context, eventID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, reg := range l.records {
		if reg.EventID == eventID {
			count++
		}
	}
	return count, nil
}

var _ registration.Repository = (*Ledger)(nil)
