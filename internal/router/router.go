// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fasalmitra/equipment-rental/internal/handler"
	"github.com/fasalmitra/equipment-rental/internal/middleware"
	"github.com/fasalmitra/equipment-rental/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers to
// verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes. Unauthenticated
// operations live under /v1/auth; the current-user lookup lives under
// /v1 behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token so the presented one cannot be
	// replayed.
	g.POST("/refresh", a.Refresh)
	// Issues a fresh access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout takes the refresh token in the body and does not require a
	// JWT, so a client with an expired access token can still end its
	// session.
	g.POST("/logout", a.Logout)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleFarmer, model.RoleRenter),
	)
	auth.GET("/me", a.Me)
	auth.POST("/logout-all", a.LogoutAll)
}
