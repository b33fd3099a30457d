package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/application"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
)

type EventHandler struct {
	service EventServiceInterface
}

func NewEventHandler(s EventServiceInterface) *EventHandler {
	return &EventHandler{service: s}
}

type CreateEventRequest struct {
	Title              string    `json:"title" validate:"required" example:"Minicurso de Go"`
	Venue              string    `json:"venue" example:"Bloco C56, sala 102"`
	Price              int       `json:"price" validate:"min=0" example:"1500"`
	OpensAt            time.Time `json:"opens_at" validate:"required"`
	ClosesAt           time.Time `json:"closes_at" validate:"required"`
	TotalWithDevice    int       `json:"total_with_device" validate:"min=0" example:"30"`
	TotalWithoutDevice int       `json:"total_without_device" validate:"min=0" example:"50"`
}

type UpdateEventRequest struct {
	Title              string    `json:"title" validate:"required"`
	Venue              string    `json:"venue"`
	Price              int       `json:"price" validate:"min=0"`
	OpensAt            time.Time `json:"opens_at" validate:"required"`
	ClosesAt           time.Time `json:"closes_at" validate:"required"`
	TotalWithDevice    int       `json:"total_with_device" validate:"min=0"`
	TotalWithoutDevice int       `json:"total_without_device" validate:"min=0"`
}

type SeatPoolResponse struct {
	Total     int `json:"total" example:"30"`
	Reserved  int `json:"reserved" example:"12"`
	Available int `json:"available" example:"18"`
}

type EventResponse struct {
	ID            string                      `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Title         string                      `json:"title" example:"Minicurso de Go"`
	Venue         string                      `json:"venue" example:"Bloco C56, sala 102"`
	Price         int                         `json:"price" example:"1500"`
	OpensAt       time.Time                   `json:"opens_at"`
	ClosesAt      time.Time                   `json:"closes_at"`
	Pools         map[string]SeatPoolResponse `json:"pools"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func toEventResponse(e *event.Event) EventResponse {
	pools := make(map[string]SeatPoolResponse, len(e.Pools))
	for t, p := range e.Pools {
		pools[string(t)] = SeatPoolResponse{
			Total:     p.Total,
			Reserved:  p.Reserved,
			Available: p.Available(),
		}
	}
	return EventResponse{
		ID: e.ID, Title: e.Title, Venue: e.Venue, Price: e.Price,
		OpensAt: e.OpensAt, ClosesAt: e.ClosesAt, Pools: pools,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

// Create godoc
// @Summary Cria um evento
// @Description Cria um evento com os contadores de vagas de cada tipo
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Dados do evento"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Router /admin/events [post]
func (h *EventHandler) Create(c echo.Context) error {
	var req CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.CreateEvent(c.Request().Context(), application.CreateEventInput{
		Title:              req.Title,
		Venue:              req.Venue,
		Price:              req.Price,
		OpensAt:            req.OpensAt,
		ClosesAt:           req.ClosesAt,
		TotalWithDevice:    req.TotalWithDevice,
		TotalWithoutDevice: req.TotalWithoutDevice,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toEventResponse(e))
}

// GetByID godoc
// @Summary Busca um evento
// @Tags events
// @Produce json
// @Param id path string true "ID do evento"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetByID(c echo.Context) error {
	e, err := h.service.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// List godoc
// @Summary Lista eventos
// @Tags events
// @Produce json
// @Param limit query int false "Quantidade" default(20)
// @Param offset query int false "Deslocamento" default(0)
// @Success 200 {array} EventResponse
// @Router /events [get]
func (h *EventHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	events, err := h.service.ListEvents(c.Request().Context(), limit, offset)
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make([]EventResponse, len(events))
	for i, e := range events {
		resp[i] = toEventResponse(e)
	}
	return c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary Atualiza um evento
// @Description Atualiza os metadados do evento; o novo total de vagas tem de comportar as reservas atuais
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "ID do evento"
// @Param request body UpdateEventRequest true "Dados do evento"
// @Success 200 {object} EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Conflito de versão"
// @Router /admin/events/{id} [put]
func (h *EventHandler) Update(c echo.Context) error {
	var req UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "requisição inválida")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	e, err := h.service.UpdateEvent(c.Request().Context(), application.UpdateEventInput{
		ID:                 c.Param("id"),
		Title:              req.Title,
		Venue:              req.Venue,
		Price:              req.Price,
		OpensAt:            req.OpensAt,
		ClosesAt:           req.ClosesAt,
		TotalWithDevice:    req.TotalWithDevice,
		TotalWithoutDevice: req.TotalWithoutDevice,
	})
	if err != nil {
		return domainHTTPError(err)
	}
	return c.JSON(http.StatusOK, toEventResponse(e))
}

// Delete godoc
// @Summary Remove um evento
// @Description Remove o evento; recusado enquanto houver inscrições
// @Tags events
// @Param id path string true "ID do evento"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Evento com inscrições"
// @Router /admin/events/{id} [delete]
func (h *EventHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteEvent(c.Request().Context(), c.Param("id")); err != nil {
		return domainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Availability godoc
// @Summary Vagas disponíveis por tipo
// @Tags events
// @Produce json
// @Param id path string true "ID do evento"
// @Success 200 {object} map[string]int
// @Failure 404 {object} map[string]string
// @Router /events/{id}/availability [get]
func (h *EventHandler) Availability(c echo.Context) error {
	availability, err := h.service.Availability(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainHTTPError(err)
	}
	resp := make(map[string]int, len(availability))
	for t, n := range availability {
		resp[string(t)] = n
	}
	return c.JSON(http.StatusOK, resp)
}
