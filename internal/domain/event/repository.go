package event

import (
	"context"
	"time"
)

// Repository é a interface do catálogo de eventos.
// Os contadores de reserva só podem ser alterados por TryReserveSeat e
// ReleaseSeat; Update nunca toca em Reserved.
type Repository interface {
	// Create cria um novo evento
	Create(ctx context.Context, event *Event) error

	// GetByID busca um evento pelo ID
	GetByID(ctx context.Context, id string) (*Event, error)

	// List retorna os eventos ordenados pela abertura das inscrições
	List(ctx context.Context, limit, offset int) ([]*Event, error)

	// ListOpen retorna os eventos cujo período de inscrição contém o instante
	ListOpen(ctx context.Context, now time.Time, limit int) ([]*Event, error)

	// Update atualiza os metadados do evento (lock otimista).
	// O novo total de um contador deve ser >= às reservas atuais.
	Update(ctx context.Context, event *Event) error

	// Delete remove um evento sem inscrições
	Delete(ctx context.Context, id string) error

	// TryReserveSeat incrementa o contador do tipo em um único passo atômico.
	// Verificação de disponibilidade e incremento são indivisíveis em relação
	// a qualquer outra chamada para o mesmo par (eventID, seatType).
	// Retorna ErrNoSeatsAvailable sem alterar nada quando o contador está cheio.
	TryReserveSeat(ctx context.Context, eventID string, seatType SeatType) error

	// ReleaseSeat decrementa o contador do tipo, nunca abaixo de zero.
	// Retorna ErrNoReservedSeats quando não há reserva a liberar; esse caso é
	// erro de programação do chamador, não condição de usuário.
	ReleaseSeat(ctx context.Context, eventID string, seatType SeatType) error
}
