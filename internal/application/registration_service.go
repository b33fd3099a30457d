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
	registrationLockTTL = 10 * time.Second
	lockMaxRetries      = 3
	lockRetryDelay      = 100 * time.Millisecond
)

// RegistrationService orquestra inscrição, cancelamento, troca de vaga,
// pagamento e presença. É o único componente que combina reservas do
// catálogo com registros do livro de inscrições; qualquer falha após uma
// reserva bem-sucedida é compensada liberando a vaga antes de propagar.
type RegistrationService struct {
	catalog     event.Repository
	ledger      registration.Repository
	lockManager LockManager
	cache       AvailabilityCache
}

// NewRegistrationService cria um RegistrationService.
// lockManager e cache são opcionais (nil desativa lock e cache); a
// atomicidade da reserva é garantida pelo próprio catálogo.
func NewRegistrationService(catalog event.Repository, ledger registration.Repository, lockManager LockManager, cache AvailabilityCache) *RegistrationService {
	return &RegistrationService{catalog: catalog, ledger: ledger, lockManager: lockManager, cache: cache}
}

// RegisterInput são os dados de uma inscrição
type RegisterInput struct {
	EventID   string
	UserID    string
	SeatType  event.SeatType
	ProofPath *string
}

// Register inscreve o usuário no evento reservando uma vaga do tipo pedido.
// Ordem: validações → janela → comprovante → duplicidade → reserva atômica →
// gravação no livro. Se a gravação falhar depois da reserva, a vaga é
// devolvida antes de o erro subir.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*registration.Registration, error) {
	reg := registration.New(input.EventID, input.UserID, input.SeatType, input.ProofPath)
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	ev, err := s.catalog.GetByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}

	if !ev.IsRegistrationOpen(time.Now()) {
		s.countRegistration("window_closed")
		return nil, event.ErrOutsideRegistrationWindow
	}

	if ev.IsPriced() && input.ProofPath == nil {
		return nil, registration.ErrPaymentProofRequired
	}

	// Lock por (evento, usuário) para colapsar envios duplicados do mesmo
	// usuário; a disputa por vagas entre usuários distintos não passa por aqui.
	if s.lockManager != nil {
		lockKey := fmt.Sprintf("registration:%s:%s", input.EventID, input.UserID)
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, lockKey, registrationLockTTL, lockMaxRetries, lockRetryDelay)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				return nil, registration.ErrRegistrationInProgress
			}
			return nil, fmt.Errorf("falha ao obter lock de inscrição: %w", err)
		}
		defer lock.Release(ctx)
	}

	exists, err := s.ledger.Exists(ctx, input.EventID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("falha ao verificar inscrição existente: %w", err)
	}
	if exists {
		s.countRegistration("already_registered")
		return nil, registration.ErrAlreadyRegistered
	}

	if err := s.catalog.TryReserveSeat(ctx, input.EventID, input.SeatType); err != nil {
		if errors.Is(err, event.ErrNoSeatsAvailable) {
			s.countRegistration("no_seats")
		}
		return nil, err
	}

	if err := s.ledger.Create(ctx, reg); err != nil {
		// Compensação obrigatória: a reserva não pode sobreviver sem registro
		if relErr := s.catalog.ReleaseSeat(ctx, input.EventID, input.SeatType); relErr != nil {
			logger.Error("falha ao compensar reserva após erro de gravação",
				zap.String("event_id", input.EventID),
				zap.String("user_id", input.UserID),
				zap.String("seat_type", string(input.SeatType)),
				zap.Error(relErr),
			)
		}
		if errors.Is(err, registration.ErrAlreadyRegistered) {
			s.countRegistration("already_registered")
		} else {
			s.countRegistration("error")
			logger.Error("falha ao gravar inscrição",
				zap.String("event_id", input.EventID),
				zap.String("user_id", input.UserID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.invalidateAvailability(ctx, input.EventID)
	s.countRegistration("success")
	return reg, nil
}

// Cancel remove a inscrição e devolve a vaga ao contador.
// O cancelamento é permitido mesmo fora do período de inscrição, mas
// inscrições com presença registrada são definitivas: o livro recusa a
// remoção com ErrRegistrationConcluded e a vaga segue contada.
func (s *RegistrationService) Cancel(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	reg, err := s.ledger.Delete(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.ReleaseSeat(ctx, eventID, reg.SeatType); err != nil {
		if errors.Is(err, event.ErrNoReservedSeats) {
			// Contador já estava em zero: inconsistência de programação,
			// não condição de usuário. O cancelamento em si foi efetivado.
			logger.Error("liberação de vaga sem reserva correspondente",
				zap.String("event_id", eventID),
				zap.String("user_id", userID),
				zap.String("seat_type", string(reg.SeatType)),
			)
		} else {
			logger.Error("falha ao liberar vaga no cancelamento",
				zap.String("event_id", eventID),
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil, err
		}
	}

	s.invalidateAvailability(ctx, eventID)
	return reg, nil
}

// ChangeSeatType troca o tipo de vaga da inscrição.
// Reserva no contador novo antes de liberar o antigo: a soma de reservas
// nunca fica subestimada; se a reserva nova falhar, nada foi alterado.
func (s *RegistrationService) ChangeSeatType(ctx context.Context, eventID, userID string, newType event.SeatType) (*registration.Registration, error) {
	if !newType.Valid() {
		return nil, event.ErrInvalidSeatType
	}

	reg, err := s.ledger.Get(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if reg.Present {
		return nil, registration.ErrRegistrationConcluded
	}
	if reg.SeatType == newType {
		return reg, nil
	}

	if err := s.catalog.TryReserveSeat(ctx, eventID, newType); err != nil {
		return nil, err
	}

	prev, err := s.ledger.ChangeSeatType(ctx, eventID, userID, newType)
	if err != nil {
		// Compensação: devolve a vaga recém-reservada
		if relErr := s.catalog.ReleaseSeat(ctx, eventID, newType); relErr != nil {
			logger.Error("falha ao compensar reserva na troca de vaga",
				zap.String("event_id", eventID),
				zap.String("user_id", userID),
				zap.Error(relErr),
			)
		}
		return nil, err
	}

	if err := s.catalog.ReleaseSeat(ctx, eventID, prev); err != nil {
		// A vaga antiga segue contada; superestimar é seguro, subestimar não
		logger.Error("falha ao liberar vaga antiga na troca",
			zap.String("event_id", eventID),
			zap.String("user_id", userID),
			zap.String("seat_type", string(prev)),
			zap.Error(err),
		)
	}

	s.invalidateAvailability(ctx, eventID)
	reg.SeatType = newType
	return reg, nil
}

// MarkPaid confirma o pagamento da inscrição. A escrita é atômica no
// livro: nenhum outro campo é regravado junto.
func (s *RegistrationService) MarkPaid(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	return s.ledger.MarkPaid(ctx, eventID, userID)
}

// MarkPresent registra a presença do inscrito.
// Em eventos pagos exige pagamento confirmado; a verificação e a escrita
// acontecem na mesma operação do livro. A presença não altera os
// contadores de vaga e torna a inscrição definitiva: o presente continua
// contado para fins de auditoria.
func (s *RegistrationService) MarkPresent(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	ev, err := s.catalog.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.ledger.MarkPresent(ctx, eventID, userID, ev.IsPriced())
}

// GetRegistration busca a inscrição do par (evento, usuário)
func (s *RegistrationService) GetRegistration(ctx context.Context, eventID, userID string) (*registration.Registration, error) {
	return s.ledger.Get(ctx, eventID, userID)
}

// ListRegistrations retorna as inscrições do evento por ordem de chegada
func (s *RegistrationService) ListRegistrations(ctx context.Context, eventID string) ([]*registration.Registration, error) {
	if _, err := s.catalog.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.ledger.ListByEvent(ctx, eventID)
}

func (s *RegistrationService) invalidateAvailability(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, eventID); err != nil {
		logger.Warn("falha ao invalidar cache de disponibilidade",
			zap.String("event_id", eventID),
			zap.Error(err),
		)
	}
}

func (s *RegistrationService) countRegistration(status string) {
	if m := metrics.Get(); m != nil {
		m.RegistrationsTotal.WithLabelValues(status).Inc()
	}
}
