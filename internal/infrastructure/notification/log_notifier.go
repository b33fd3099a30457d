package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/logger"
)

// LogNotifier registra as confirmações de inscrição no log estruturado.
// O envio real de e-mail é responsabilidade de um serviço externo; esta
// implementação cobre desenvolvimento e testes.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier cria um LogNotifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.Get()}
}

// SendRegistrationConfirmation registra a confirmação no log
func (n *LogNotifier) SendRegistrationConfirmation(ctx context.Context, userID, eventID string, seatType event.SeatType) error {
	n.log.Info("confirmação de inscrição enviada",
		zap.String("user_id", userID),
		zap.String("event_id", eventID),
		zap.String("seat_type", string(seatType)),
	)
	return nil
}
