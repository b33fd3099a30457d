package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/event"
	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/domain/registration"
)

// domainHTTPError traduz erros de domínio para o status HTTP correspondente.
// Erros desconhecidos viram 500 e têm a mensagem mascarada pelo error handler.
func domainHTTPError(err error) error {
	switch {
	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, registration.ErrRegistrationNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, event.ErrOutsideRegistrationWindow):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, event.ErrNoSeatsAvailable),
		errors.Is(err, registration.ErrAlreadyRegistered),
		errors.Is(err, registration.ErrNotPaid),
		errors.Is(err, registration.ErrAlreadyPresent),
		errors.Is(err, registration.ErrRegistrationConcluded),
		errors.Is(err, registration.ErrRegistrationInProgress),
		errors.Is(err, event.ErrEventHasRegistrations),
		errors.Is(err, event.ErrOptimisticLockConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, registration.ErrPaymentProofRequired),
		errors.Is(err, registration.ErrInvalidPaymentProof),
		errors.Is(err, event.ErrInvalidSeatType),
		errors.Is(err, event.ErrEventTitleRequired),
		errors.Is(err, event.ErrInvalidPrice),
		errors.Is(err, event.ErrInvalidSeatTotal),
		errors.Is(err, event.ErrSeatTotalBelowReserved),
		errors.Is(err, event.ErrInvalidRegistrationPeriod),
		errors.Is(err, registration.ErrEventIDRequired),
		errors.Is(err, registration.ErrUserIDRequired):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
