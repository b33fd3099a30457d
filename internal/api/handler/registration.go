package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/application"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/logger"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
	roleStaff      = "staff"

	notifyTimeout = 5 * time.Second
)

type RegistrationHandler struct {
	service  RegistrationServiceInterface
	events   EventServiceInterface
	payments PaymentGate
	notifier Notifier
}

func NewRegistrationHandler(s RegistrationServiceInterface, events EventServiceInterface, payments PaymentGate, notifier Notifier) *RegistrationHandler {
	return &RegistrationHandler{service: s, events: events, payments: payments, notifier: notifier}
}

type RegistrationResponse struct {
	EventID      string    `json:"event_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID       string    `json:"user_id" example:"ra123456"`
	SeatType     string    `json:"seat_type" example:"with_device"`
	Paid         bool      `json:"paid"`
	Present      bool      `json:"present"`
	ProofPath    *string   `json:"proof_path,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRegistrationResponse(r *registration.Registration) RegistrationResponse {
	return RegistrationResponse{
		EventID: r.EventID, UserID: r.UserID, SeatType: string(r.SeatType),
		Paid: r.Paid, Present: r.Present, ProofPath: r.ProofPath,
		RegisteredAt: r.RegisteredAt, UpdatedAt: r.UpdatedAt,
	}
}

type ChangeSeatTypeRequest struct {
	SeatType string `json:"seat_type" validate:"required" example:"without_device"`
}

func requestUserID(c echo.Context) (string, error) {
	userID := c.Request().Header.Get(headerUserID)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "identificação do usuário é obrigatória")
	}
	return userID, nil
}

func isStaff(c echo.Context) bool {
	return c.Request().Header.Get(headerUserRole) == roleStaff
}

// selfOrStaff autoriza o próprio usuário ou um membro da equipe.
func selfOrStaff(c echo.Context, targetUserID string) error {
	userID, err := requestUserID(c)
	if err != nil {
		return err
	}
	if userID != targetUserID && !isStaff(c) {
		return echo.NewHTTPError(http.StatusForbidden, "operação permitida apenas ao próprio usuário ou à equipe")
	}
	return nil
}

// Register godoc
// @Summary Inscreve o usuário em um evento
// @Description Reserva uma vaga do tipo pedido; eventos pagos exigem comprovante de pagamento (multipart, campo "proof")
// @Tags registrations
// @Accept mpfd
// @Produce json
// @Param X-User-ID header string true "ID do usuário"
// @Param id path string true "ID do evento"
// @Param seat_type formData string true "Tipo de vaga" Enums(with_device, without_device)
// @Param proof formData file false "Comprovante de pagamento"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "Sem vagas ou já inscrito"
// @Failure 422 {object} map[string]string "Fora do período de inscrição"
// @Router /events/{id}/registrations [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return err
	}
	eventID := c.Param("id")

	seatType := event.SeatType(c.FormValue("seat_type"))

	var proofPath *string
	ev, err := h.events.GetEvent(c.Request().Context(), eventID)
	if err != nil {
		return domainHTTPError(err)
	}
	if ev.IsPriced() {
		file, err := c.FormFile("proof")
		if err != nil {
			file = nil
		}
		if err := h.payments.ValidateProof(file); err != nil {
			return domainHTTPError(err)
		}
		path, err := h.payments.StoreProof(eventID, userID, file)
		if err != nil {
			return domainHTTPError(err)
		}
		proofPath = &path
	}

	r, err := h.service.Register(c.Request().Context(), application.RegisterInput{
		EventID:   eventID,
		UserID:    userID,
		SeatType:  seatType,
		ProofPath: proofPath,
	})
	if err != nil {
		// Inscrição recusada: o comprovante já gravado não pode ficar órfão
		if proofPath != nil {
			if remErr := h.payments.RemoveProof(*proofPath); remErr != nil {
				logger.Warn("falha ao descartar comprovante de inscrição recusada",
					zap.String("event_id", eventID),
					zap.String("user_id", userID),
					zap.String("proof_path", *proofPath),
					zap.Error(remErr),
				)
			}
		}
		return domainHTTPError(err)
	}

	// Confirmação fora do caminho da resposta; falha de envio não desfaz a inscrição
	if h.notifier != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := h.notifier.SendRegistrationConfirmation(ctx, r.UserID, r.EventID, r.SeatType); err != nil {
				logger.Warn("falha ao enviar confirmação de inscrição",
					zap.String("event_id", r.EventID),
					zap.String("user_id", r.UserID),
					zap.Error(err),
				)
			}
		}()
	}

	return c.JSON(http.StatusCreated, toRegistrationResponse(r))
}

// Cancel godoc
// @Summary Cancela uma inscrição
// @Description Remove a inscrição e devolve a vaga; permitido mesmo fora do período de inscrição
// @Tags registrations
// @Produce json
// @Param X-User-ID header string true "ID do usuário"
// @Param id path string true "ID do evento"
// @Param user_id path string true "ID do inscrito"
// @Success 200 {object} RegistrationResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id}/registrations/{user_id} [delete]
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	targetID := c.Param("user_id")
	if err := selfOrStaff(c, targetID); err != nil {
		return err
	}
	r, err := h.service.Cancel(c.Request().Context(), c.Param("id"), targetID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(r))
}

// ChangeSeatType godoc
// @Summary Troca o tipo de vaga da inscrição
// @Description Reserva no novo contador antes de liberar o antigo; falha se o novo tipo estiver esgotado
// @Tags registrations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ID do usuário"
// @Param id path string true "ID do evento"
// @Param user_id path string true "ID do inscrito"
// @Param request body ChangeSeatTypeRequest true "Novo tipo de vaga"
// @Success 200 {object} RegistrationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Sem vagas do novo tipo"
// @Router /events/{id}/registrations/{user_id}/seat-type [patch]
func (h *RegistrationHandler) ChangeSeatType(c echo.Context) error {
	targetID := c.Param("user_id")
	if err := selfOrStaff(c, targetID); err != nil {
		return err
	}
	var req ChangeSeatTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.ChangeSeatType(c.Request().Context(), c.Param("id"), targetID, event.SeatType(req.SeatType))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(r))
}

// MarkPaid godoc
// @Summary Confirma o pagamento de uma inscrição
// @Tags registrations
// @Produce json
// @Param id path string true "ID do evento"
// @Param user_id path string true "ID do inscrito"
// @Success 200 {object} RegistrationResponse
// @Failure 404 {object} map[string]string
// @Router /admin/events/{id}/registrations/{user_id}/payment [post]
func (h *RegistrationHandler) MarkPaid(c echo.Context) error {
	r, err := h.service.MarkPaid(c.Request().Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(r))
}

// MarkPresent godoc
// @Summary Marca a presença de um inscrito
// @Description Em eventos pagos exige pagamento confirmado
// @Tags registrations
// @Produce json
// @Param id path string true "ID do evento"
// @Param user_id path string true "ID do inscrito"
// @Success 200 {object} RegistrationResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Pagamento pendente ou presença já marcada"
// @Router /admin/events/{id}/registrations/{user_id}/presence [post]
func (h *RegistrationHandler) MarkPresent(c echo.Context) error {
	r, err := h.service.MarkPresent(c.Request().Context(), c.Param("id"), c.Param("user_id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(r))
}

// GetByUser godoc
// @Summary Busca a inscrição de um usuário
// @Tags registrations
// @Produce json
// @Param X-User-ID header string true "ID do usuário"
// @Param id path string true "ID do evento"
// @Param user_id path string true "ID do inscrito"
// @Success 200 {object} RegistrationResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id}/registrations/{user_id} [get]
func (h *RegistrationHandler) GetByUser(c echo.Context) error {
	targetID := c.Param("user_id")
	if err := selfOrStaff(c, targetID); err != nil {
		return err
	}
	r, err := h.service.GetRegistration(c.Request().Context(), c.Param("id"), targetID)
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toRegistrationResponse(r))
}

// ListByEvent godoc
// @Summary Lista as inscrições de um evento
// @Description Ordenadas por instante de inscrição
// @Tags registrations
// @Produce json
// @Param id path string true "ID do evento"
// @Success 200 {array} RegistrationResponse
// @Failure 404 {object} map[string]string
// @Router /admin/events/{id}/registrations [get]
func (h *RegistrationHandler) ListByEvent(c echo.Context) error {
	registrations, err := h.service.ListRegistrations(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make([]RegistrationResponse, len(registrations))
	for i, r := range registrations {
		resp[i] = toRegistrationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}
