package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/pkg/logger"
)

// ErrorResponse é o formato unificado de resposta de erro
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// CustomHTTPErrorHandler é o tratador de erros da API
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "erro interno do servidor"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// Erros 5xx vão para o log; a mensagem interna não vaza na resposta
	if code >= 500 {
		logger.Error("erro de servidor",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		message = "erro interno do servidor"
	}

	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("falha ao enviar resposta de erro", zap.Error(err))
	}
}
