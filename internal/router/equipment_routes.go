package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fasalmitra/equipment-rental/internal/handler"
	"github.com/fasalmitra/equipment-rental/internal/middleware"
	"github.com/fasalmitra/equipment-rental/internal/model"
)

// RegisterEquipment registers the equipment routes. Browsing is public
// and sits behind the Redis response cache; listing management requires
// a valid JWT with the farmer role.
func RegisterEquipment(e *echo.Echo, h *handler.EquipmentHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	// Public browse endpoints. The catalogue is the most-hit surface of
	// the marketplace, so GET responses are cached.
	e.GET("/v1/equipment", h.ListEquipment, cache)
	e.GET("/v1/equipment/:id", h.GetEquipment, cache)

	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleFarmer),
	)
	g.GET("/my-equipment", h.MyEquipment)
	g.POST("/equipment", h.CreateEquipment)
	g.PUT("/equipment/:id", h.UpdateEquipment)
	// Deletion is refused with 409 while pending or confirmed bookings
	// reference the listing.
	g.DELETE("/equipment/:id", h.DeleteEquipment)
}
