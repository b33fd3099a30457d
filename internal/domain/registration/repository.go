package registration

import (
	"context"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
)

// Repository é a interface do livro de inscrições.
// A unicidade do par (eventID, userID) é garantida pela camada de
// armazenamento, não por verificação prévia do chamador.
type Repository interface {
	// Create grava uma nova inscrição.
	// Retorna ErrAlreadyRegistered quando o par (eventID, userID) já existe.
	Create(ctx context.Context, reg *Registration) error

	// Exists informa se o par (eventID, userID) possui inscrição
	Exists(ctx context.Context, eventID, userID string) (bool, error)

	// Get busca a inscrição do par (eventID, userID)
	Get(ctx context.Context, eventID, userID string) (*Registration, error)

	// MarkPaid confirma o pagamento em uma única escrita atômica,
	// sem ler e regravar o registro inteiro.
	MarkPaid(ctx context.Context, eventID, userID string) (*Registration, error)

	// MarkPresent registra a presença em uma única escrita atômica.
	// Com requirePaid, a escrita só ocorre se o pagamento estiver
	// confirmado (ErrNotPaid caso contrário); presença repetida
	// retorna ErrAlreadyPresent.
	MarkPresent(ctx context.Context, eventID, userID string, requirePaid bool) (*Registration, error)

	// ChangeSeatType troca o tipo de vaga e retorna o tipo anterior,
	// para que o chamador libere a vaga do contador antigo.
	// Inscrições com presença registrada são imutáveis
	// (ErrRegistrationConcluded).
	ChangeSeatType(ctx context.Context, eventID, userID string, newType event.SeatType) (event.SeatType, error)

	// Delete remove a inscrição e retorna o registro removido,
	// que carrega o tipo de vaga a liberar. Inscrições com presença
	// registrada não podem ser removidas (ErrRegistrationConcluded).
	Delete(ctx context.Context, eventID, userID string) (*Registration, error)

	// ListByEvent retorna as inscrições do evento ordenadas por RegisteredAt
	ListByEvent(ctx context.Context, eventID string) ([]*Registration, error)

	// CountByEvent retorna o número de inscrições ativas do evento
	CountByEvent(ctx context.Context, eventID string) (int, error)
}
