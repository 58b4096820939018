// Booking endpoints. Creation enforces the renter role before any
// repository work so the precondition order matches the documented
// first-failure-wins sequence: role, existence, availability, overlap.
// Lifecycle events are published to the broker after the database work
// commits; publish failures are ignored on purpose so the booking flow
// never depends on the broker.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fasalmitra/equipment-rental/internal/model"
	"github.com/fasalmitra/equipment-rental/internal/queue"
	"github.com/fasalmitra/equipment-rental/internal/repository"
	queue_publisher "github.com/fasalmitra/equipment-rental/internal/service"
)

// dateLayout is the wire format for booking dates.
const dateLayout = "2006-01-02"

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	BookingRepo *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler and panics when the
// repository is missing, mirroring the wiring checks elsewhere.
func NewBookingHandler(bookingRepo *repository.BookingRepo) *BookingHandler {
	if bookingRepo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{BookingRepo: bookingRepo}
}

type createBookingReq struct {
	EquipmentID      uint64 `json:"equipment_id"`
	StartDate        string `json:"start_date"` // YYYY-MM-DD
	EndDate          string `json:"end_date"`   // YYYY-MM-DD
	TotalAmountCents uint32 `json:"total_amount_cents"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

// CreateBooking handles POST /v1/bookings. Only renters may book;
// farmers get 403 before the request body is even validated. The
// repository then runs the remaining preconditions and the insert in
// one transaction.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := getRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if role != model.RoleRenter {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only renters can create bookings"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EquipmentID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "equipment_id is required"})
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_date"})
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_date"})
	}
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end date must be after start date"})
	}

	b := &model.Booking{
		EquipmentID:      req.EquipmentID,
		RenterID:         userID,
		StartDate:        start,
		EndDate:          end,
		TotalAmountCents: req.TotalAmountCents,
	}
	err = h.BookingRepo.Create(c.Request().Context(), b)
	switch {
	case err == nil:
		// fall through to publish + respond
	case errors.Is(err, repository.ErrEquipmentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	case errors.Is(err, repository.ErrNotAvailable):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "equipment is not available"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "equipment is already booked for these dates"})
	case errors.Is(err, repository.ErrInvalidDateRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "end date must be after start date"})
	case errors.Is(err, repository.ErrAmountMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total amount does not match daily rate"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create booking"})
	}

	h.publishEvent(c.Request().Context(), b.ID, userID, queue.KindBookingRequested, "", model.StatusPending)
	return c.JSON(http.StatusCreated, echo.Map{
		"id":                 b.ID,
		"status":             b.Status,
		"total_amount_cents": b.TotalAmountCents,
		"created_at":         b.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ListBookings handles GET /v1/bookings. Farmers see bookings on their
// equipment, renters the bookings they made; both newest first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := getRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.BookingRepo.ListForUser(c.Request().Context(), userID, role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetBooking handles GET /v1/bookings/:id for either participant.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	det, err := h.BookingRepo.GetByIDForParticipant(c.Request().Context(), id, userID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"item": det})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
}

// UpdateBookingStatus handles PUT /v1/bookings/:id/status. The caller
// must be a participant (owner of the equipment or the renter), the
// requested status must name a known state and the transition must be
// legal; terminal bookings yield 409.
func (h *BookingHandler) UpdateBookingStatus(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	role, err := getRole(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status, ok := model.ParseStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	// Read the current status first so the event can report the move.
	prev, err := h.BookingRepo.GetByIDForParticipant(c.Request().Context(), id, userID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to update this booking"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}

	det, err := h.BookingRepo.UpdateStatus(c.Request().Context(), id, userID, role, status)
	switch {
	case err == nil:
		h.publishEvent(c.Request().Context(), id, userID, queue.KindBookingStatusChanged, prev.Status, status)
		return c.JSON(http.StatusOK, echo.Map{"item": det})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not authorized to update this booking"})
	case errors.Is(err, repository.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
	}
}

// publishEvent loads the booking detail and pushes a lifecycle event to
// the broker. Failures are swallowed after logging inside the
// publisher; the HTTP response must not depend on the broker.
func (h *BookingHandler) publishEvent(ctx context.Context, bookingID, userID uint64, kind, oldStatus, newStatus string) {
	det, err := h.BookingRepo.GetByIDForParticipant(ctx, bookingID, userID)
	if err != nil {
		return
	}
	_ = queue_publisher.PublishBookingEvent(ctx, queue.BookingEvent{
		Kind:             kind,
		BookingID:        det.ID,
		EquipmentID:      det.EquipmentID,
		EquipmentName:    det.EquipmentName,
		OwnerID:          det.OwnerID,
		RenterID:         det.RenterID,
		RenterName:       det.RenterName,
		StartDate:        det.StartDate,
		EndDate:          det.EndDate,
		TotalAmountCents: det.TotalAmountCents,
		OldStatus:        oldStatus,
		NewStatus:        newStatus,
		OccurredAt:       time.Now().UTC().Format(time.RFC3339),
	})
}
