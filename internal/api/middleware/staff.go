package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	headerUserRole = "X-User-Role"
	roleStaff      = "staff"
)

// RequireStaff restringe a rota a membros da equipe.
// A identidade vem dos headers do gateway de autenticação upstream.
func RequireStaff() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(headerUserRole) != roleStaff {
				return echo.NewHTTPError(http.StatusForbidden, "acesso restrito à equipe")
			}
			return next(c)
		}
	}
}
