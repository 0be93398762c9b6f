package addresses

import (
	"errors"
	"net/http"

	"user-profile-service/internal/models"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new address handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListAddresses retrieves all addresses for the authenticated user.
func (h *Handler) ListAddresses(c echo.Context) error {
	userID := c.Get("userID").(string)

	result, err := h.service.ListAddresses(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.ListAddresses: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to list addresses"))
	}
	if result == nil {
		result = []models.Address{}
	}
	return c.JSON(http.StatusOK, result)
}

// AddAddress creates a new address for the authenticated user.
func (h *Handler) AddAddress(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.AddressCandidate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}

	created, err := h.service.AddAddress(c.Request().Context(), userID, req)
	if err != nil {
		return h.writeError(c, err, "Failed to add address")
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateAddress applies a partial update to one address.
func (h *Handler) UpdateAddress(c echo.Context) error {
	userID := c.Get("userID").(string)
	addressID := c.Param("addressId")

	var req models.AddressCandidate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}

	updated, err := h.service.UpdateAddress(c.Request().Context(), userID, addressID, req)
	if err != nil {
		return h.writeError(c, err, "Failed to update address")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteAddress removes one address.
func (h *Handler) DeleteAddress(c echo.Context) error {
	userID := c.Get("userID").(string)
	addressID := c.Param("addressId")

	if err := h.service.DeleteAddress(c.Request().Context(), userID, addressID); err != nil {
		return h.writeError(c, err, "Failed to delete address")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) writeError(c echo.Context, err error, fallback string) error {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    "validation_failed",
			Message: ve.Error(),
			Details: ve.Details(),
		})
	case errors.Is(err, models.ErrNotFound):
		return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "Address not found"))
	case errors.Is(err, models.ErrConflict):
		return c.JSON(http.StatusConflict, models.NewErrorResponse("conflict", "Address already exists"))
	default:
		c.Logger().Error("addresses handler: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "%s", fallback))
	}
}
