package wishlist

import (
	"errors"
	"net/http"

	"user-profile-service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service  ServiceInterface
	validate *validator.Validate
}

// NewHandler creates a new wishlist handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

// ListItems returns the authenticated user's wishlist.
func (h *Handler) ListItems(c echo.Context) error {
	userID := c.Get("userID").(string)

	items, err := h.service.ListItems(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.ListItems: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to list wishlist items"))
	}
	if items == nil {
		items = []models.WishlistItem{}
	}
	return c.JSON(http.StatusOK, items)
}

// AddItem adds a product to the wishlist.
func (h *Handler) AddItem(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.AddWishlistItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	created, err := h.service.AddItem(c.Request().Context(), userID, req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return c.JSON(http.StatusConflict, models.NewErrorResponse("conflict", "Product is already on the wishlist"))
		}
		c.Logger().Error("Handler.AddItem: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to add wishlist item"))
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateItem changes the display metadata or note of one wishlist item.
func (h *Handler) UpdateItem(c echo.Context) error {
	userID := c.Get("userID").(string)
	itemID := c.Param("itemId")

	var req models.UpdateWishlistItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	updated, err := h.service.UpdateItem(c.Request().Context(), userID, itemID, req)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "Wishlist item not found"))
		}
		c.Logger().Error("Handler.UpdateItem: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to update wishlist item"))
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteItem removes one wishlist item.
func (h *Handler) DeleteItem(c echo.Context) error {
	userID := c.Get("userID").(string)
	itemID := c.Param("itemId")

	if err := h.service.DeleteItem(c.Request().Context(), userID, itemID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "Wishlist item not found"))
		}
		c.Logger().Error("Handler.DeleteItem: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to delete wishlist item"))
	}
	return c.NoContent(http.StatusNoContent)
}
