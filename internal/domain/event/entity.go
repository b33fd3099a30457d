package event

import "time"

// SeatType identifica a vaga pela necessidade de notebook próprio.
type SeatType string

const (
	SeatTypeWithDevice    SeatType = "with_device"
	SeatTypeWithoutDevice SeatType = "without_device"
)

// SeatTypes lista os tipos de vaga na ordem canônica.
var SeatTypes = []SeatType{SeatTypeWithDevice, SeatTypeWithoutDevice}

// Valid informa se o tipo de vaga é conhecido.
func (t SeatType) Valid() bool {
	return t == SeatTypeWithDevice || t == SeatTypeWithoutDevice
}

// SeatPool representa um contador de vagas de um tipo.
type SeatPool struct {
	Total    int
	Reserved int
}

// Available retorna quantas vagas restam no contador.
func (p SeatPool) Available() int {
	return p.Total - p.Reserved
}

// Event representa a entidade de evento com seus dois contadores de vagas.
type Event struct {
	ID        string
	Title     string
	Venue     string
	Price     int // em centavos; 0 = gratuito
	OpensAt   time.Time
	ClosesAt  time.Time
	Pools     map[SeatType]SeatPool
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int // para lock otimista
}

// NewEvent cria um novo evento com os contadores de reserva zerados.
func NewEvent(title, venue string, price int, opensAt, closesAt time.Time, totalWithDevice, totalWithoutDevice int) *Event {
	now := time.Now()
	return &Event{
		Title:    title,
		Venue:    venue,
		Price:    price,
		OpensAt:  opensAt,
		ClosesAt: closesAt,
		Pools: map[SeatType]SeatPool{
			SeatTypeWithDevice:    {Total: totalWithDevice},
			SeatTypeWithoutDevice: {Total: totalWithoutDevice},
		},
		CreatedAt: now,
		UpdatedAt: now,
		Version:   0,
	}
}

// IsRegistrationOpen informa se o instante está dentro do período de inscrição.
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	return !now.Before(e.OpensAt) && !now.After(e.ClosesAt)
}

// IsPriced informa se o evento é pago.
func (e *Event) IsPriced() bool {
	return e.Price > 0
}

// Pool retorna o contador de vagas do tipo informado.
func (e *Event) Pool(t SeatType) SeatPool {
	return e.Pools[t]
}

// Availability retorna as vagas restantes por tipo.
func (e *Event) Availability() map[SeatType]int {
	out := make(map[SeatType]int, len(e.Pools))
	for t, p := range e.Pools {
		out[t] = p.Available()
	}
	return out
}

// Validate valida a entidade de evento.
// Reserved nunca pode ultrapassar Total em nenhum dos contadores.
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrEventTitleRequired
	}
	if e.Price < 0 {
		return ErrInvalidPrice
	}
	if e.ClosesAt.Before(e.OpensAt) {
		return ErrInvalidRegistrationPeriod
	}
	for _, t := range SeatTypes {
		p := e.Pools[t]
		if p.Total < 0 {
			return ErrInvalidSeatTotal
		}
		if p.Reserved < 0 || p.Reserved > p.Total {
			return ErrSeatTotalBelowReserved
		}
	}
	return nil
}
