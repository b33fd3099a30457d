package middleware

import (
	"crypto/subtle"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// MetricsBasicAuth protege o endpoint /metrics com Basic Auth.
// Só exige autenticação quando METRICS_USER e METRICS_PASSWORD estão
// definidos; sem eles o acesso é liberado (uso local).
func MetricsBasicAuth() echo.MiddlewareFunc {
	expectedUser := os.Getenv("METRICS_USER")
	expectedPass := os.Getenv("METRICS_PASSWORD")

	if expectedUser == "" || expectedPass == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		// ConstantTimeCompare evita vazamento por tempo de resposta
		userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(expectedUser)) == 1
		passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(expectedPass)) == 1

		return userMatch && passMatch, nil
	})
}
