package api

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator é o validador de requisições do Echo
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator cria um novo validador
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate executa a validação da requisição
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(400, err.Error())
	}
	return nil
}
