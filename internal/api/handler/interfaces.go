package handler

import (
	"context"
	"mime/multipart"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/application"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
)

// EventServiceInterface é a interface do serviço de eventos
type EventServiceInterface interface {
	CreateEvent(ctx context.Context, input application.CreateEventInput) (*event.Event, error)
	GetEvent(ctx context.Context, id string) (*event.Event, error)
	ListEvents(ctx context.Context, limit, offset int) ([]*event.Event, error)
	UpdateEvent(ctx context.Context, input application.UpdateEventInput) (*event.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	Availability(ctx context.Context, eventID string) (map[event.SeatType]int, error)
}

// RegistrationServiceInterface é a interface do serviço de inscrições
type RegistrationServiceInterface interface {
	Register(ctx context.Context, input application.RegisterInput) (*registration.Registration, error)
	Cancel(ctx context.Context, eventID, userID string) (*registration.Registration, error)
	ChangeSeatType(ctx context.Context, eventID, userID string, newType event.SeatType) (*registration.Registration, error)
	MarkPaid(ctx context.Context, eventID, userID string) (*registration.Registration, error)
	MarkPresent(ctx context.Context, eventID, userID string) (*registration.Registration, error)
	GetRegistration(ctx context.Context, eventID, userID string) (*registration.Registration, error)
	ListRegistrations(ctx context.Context, eventID string) ([]*registration.Registration, error)
}

// PaymentGate valida, armazena e descarta comprovantes de pagamento
type PaymentGate interface {
	ValidateProof(file *multipart.FileHeader) error
	StoreProof(eventID, userID string, file *multipart.FileHeader) (string, error)
	RemoveProof(path string) error
}

// Notifier envia confirmações de inscrição
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, userID, eventID string, seatType event.SeatType) error
}
