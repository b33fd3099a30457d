package event

import "errors"

// Erros do domínio de evento
var (
	ErrEventNotFound             = errors.New("evento não encontrado")
	ErrEventTitleRequired        = errors.New("o título do evento é obrigatório")
	ErrInvalidPrice              = errors.New("o preço deve ser maior ou igual a zero")
	ErrInvalidSeatTotal          = errors.New("o total de vagas deve ser maior ou igual a zero")
	ErrSeatTotalBelowReserved    = errors.New("o total de vagas não pode ficar abaixo das vagas já reservadas")
	ErrInvalidRegistrationPeriod = errors.New("o fim do período de inscrição deve ser posterior ao início")
	ErrInvalidSeatType           = errors.New("tipo de vaga desconhecido")
	ErrOutsideRegistrationWindow = errors.New("fora do período de inscrição do evento")
	ErrNoSeatsAvailable          = errors.New("não há vagas disponíveis para este tipo")
	ErrNoReservedSeats           = errors.New("não há vaga reservada para liberar")
	ErrEventHasRegistrations     = errors.New("o evento possui inscrições e não pode ser removido")
	ErrOptimisticLockConflict    = errors.New("conflito de atualização concorrente do evento")
)
