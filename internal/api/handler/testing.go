package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/pet-informatica-uem/site-pet-backend-sub000/internal/api"
)

// NewTestEcho cria uma instância de Echo para testes
func NewTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = api.NewValidator()
	return e
}
