// Equipment endpoints: public browsing plus farmer-only listing
// management. Deletion is gated on booking state: equipment with a
// pending or confirmed booking cannot be removed, which the repository
// reports as ErrConflict and this layer maps to HTTP 409.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/fasalmitra/equipment-rental/internal/model"
	"github.com/fasalmitra/equipment-rental/internal/repository"
)

// EquipmentHandler groups the repositories needed for equipment
// browsing and management.
type EquipmentHandler struct {
	EquipmentRepo *repository.EquipmentRepo
}

// NewEquipmentHandler constructs an EquipmentHandler and panics when
// the repository is missing, mirroring the wiring checks elsewhere.
func NewEquipmentHandler(equipmentRepo *repository.EquipmentRepo) *EquipmentHandler {
	if equipmentRepo == nil {
		panic("nil repository passed to NewEquipmentHandler")
	}
	return &EquipmentHandler{EquipmentRepo: equipmentRepo}
}

type equipmentReq struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	DailyRateCents uint32   `json:"daily_rate_cents"`
	Location       string   `json:"location"`
	ImageURLs      []string `json:"image_urls"`
	Availability   *bool    `json:"availability"`
}

// ListEquipment handles GET /v1/equipment. It returns every listing
// with owner summaries, newest first. The route sits behind the
// response cache since it is the most-hit page of the marketplace.
func (h *EquipmentHandler) ListEquipment(c echo.Context) error {
	items, err := h.EquipmentRepo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load equipment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEquipment handles GET /v1/equipment/:id.
func (h *EquipmentHandler) GetEquipment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}
	det, err := h.EquipmentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrEquipmentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load equipment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": det})
}

// MyEquipment handles GET /v1/my-equipment for farmers. The query is
// indexed by owner id rather than filtering a full listing fetch.
func (h *EquipmentHandler) MyEquipment(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.EquipmentRepo.ListByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load equipment"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateEquipment handles POST /v1/equipment for farmers.
func (h *EquipmentHandler) CreateEquipment(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req equipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Category == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, category and location are required"})
	}
	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}
	e := &model.Equipment{
		OwnerID:        ownerID,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		DailyRateCents: req.DailyRateCents,
		Location:       req.Location,
		ImageURLs:      req.ImageURLs,
		Availability:   availability,
	}
	if err := h.EquipmentRepo.Create(c.Request().Context(), e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create equipment"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": e.ID})
}

// UpdateEquipment handles PUT /v1/equipment/:id. Only the owner may
// update a listing; this is also where availability is toggled, since
// the flag is owner-controlled rather than derived from bookings.
func (h *EquipmentHandler) UpdateEquipment(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}
	var req equipmentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}
	e := &model.Equipment{
		ID:             id,
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		DailyRateCents: req.DailyRateCents,
		Location:       req.Location,
		ImageURLs:      req.ImageURLs,
		Availability:   availability,
	}
	err = h.EquipmentRepo.UpdateByIDAndOwner(c.Request().Context(), e, ownerID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"id": id})
	case errors.Is(err, repository.ErrEquipmentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
}

// DeleteEquipment handles DELETE /v1/equipment/:id. Returns 204 on
// success, 404 when the listing is missing, 403 when it belongs to
// another owner and 409 while active bookings reference it.
func (h *EquipmentHandler) DeleteEquipment(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid equipment id"})
	}
	err = h.EquipmentRepo.DeleteByIDAndOwner(c.Request().Context(), id, ownerID)
	switch {
	case err == nil:
		return c.NoContent(http.StatusNoContent)
	case errors.Is(err, repository.ErrEquipmentNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "equipment not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete equipment with active bookings"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
}
