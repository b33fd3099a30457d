package registration

import (
	"time"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
)

// Registration representa a inscrição de um usuário em um evento.
// A identidade é o par (EventID, UserID); um usuário tem no máximo uma
// inscrição ativa por evento.
type Registration struct {
	EventID      string
	UserID       string
	SeatType     event.SeatType
	Paid         bool
	Present      bool
	ProofPath    *string
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// New cria uma nova inscrição pendente de presença.
func New(eventID, userID string, seatType event.SeatType, proofPath *string) *Registration {
	now := time.Now()
	return &Registration{
		EventID:      eventID,
		UserID:       userID,
		SeatType:     seatType,
		ProofPath:    proofPath,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

// MarkPaid registra a confirmação do pagamento.
func (r *Registration) MarkPaid() {
	r.Paid = true
	r.UpdatedAt = time.Now()
}

// MarkPresent registra a presença do inscrito.
// Em eventos pagos a presença exige pagamento confirmado.
func (r *Registration) MarkPresent(priced bool) error {
	if priced && !r.Paid {
		return ErrNotPaid
	}
	if r.Present {
		return ErrAlreadyPresent
	}
	r.Present = true
	r.UpdatedAt = time.Now()
	return nil
}

// Validate valida a inscrição.
func (r *Registration) Validate() error {
	if r.EventID == "" {
		return ErrEventIDRequired
	}
	if r.UserID == "" {
		return ErrUserIDRequired
	}
	if !r.SeatType.Valid() {
		return event.ErrInvalidSeatType
	}
	return nil
}
