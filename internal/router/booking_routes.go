package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fasalmitra/equipment-rental/internal/handler"
	"github.com/fasalmitra/equipment-rental/internal/middleware"
	"github.com/fasalmitra/equipment-rental/internal/model"
)

// RegisterBookings registers the booking routes under /v1. Both roles
// may list and inspect bookings; only renters can create them, which
// the handler enforces before touching the database, and status
// updates are allowed to either participant of the booking.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleFarmer, model.RoleRenter),
	)
	g.GET("/bookings", h.ListBookings)
	g.POST("/bookings", h.CreateBooking)
	g.GET("/bookings/:id", h.GetBooking)
	g.PUT("/bookings/:id/status", h.UpdateBookingStatus)
}
