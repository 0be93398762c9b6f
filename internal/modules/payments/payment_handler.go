package payments

import (
	"errors"
	"net/http"

	"user-profile-service/internal/models"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service ServiceInterface
}

// NewHandler creates a new payment method handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListPaymentMethods returns every stored payment method for the
// authenticated user.
func (h *Handler) ListPaymentMethods(c echo.Context) error {
	userID := c.Get("userID").(string)

	methods, err := h.service.ListPaymentMethods(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Error("Handler.ListPaymentMethods: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to list payment methods"))
	}
	if methods == nil {
		methods = []models.PaymentMethod{}
	}
	return c.JSON(http.StatusOK, methods)
}

// AddPaymentMethod validates and stores a new payment method. Unknown
// fields in the body are ignored by Bind; recognized fields are validated
// by the service.
func (h *Handler) AddPaymentMethod(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.PaymentMethodCandidate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}

	created, err := h.service.AddPaymentMethod(c.Request().Context(), userID, req)
	if err != nil {
		return h.writeError(c, err, "Failed to add payment method")
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdatePaymentMethod applies a partial update to one payment method.
func (h *Handler) UpdatePaymentMethod(c echo.Context) error {
	userID := c.Get("userID").(string)
	methodID := c.Param("methodId")

	var req models.PaymentMethodCandidate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}

	updated, err := h.service.UpdatePaymentMethod(c.Request().Context(), userID, methodID, req)
	if err != nil {
		return h.writeError(c, err, "Failed to update payment method")
	}
	return c.JSON(http.StatusOK, updated)
}

// DeletePaymentMethod removes one payment method.
func (h *Handler) DeletePaymentMethod(c echo.Context) error {
	userID := c.Get("userID").(string)
	methodID := c.Param("methodId")

	if err := h.service.DeletePaymentMethod(c.Request().Context(), userID, methodID); err != nil {
		return h.writeError(c, err, "Failed to delete payment method")
	}
	return c.NoContent(http.StatusNoContent)
}

// writeError maps service errors onto the error response taxonomy:
// 400 validation, 404 not found, 409 conflict, 500 everything else.
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
		return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "Payment method not found"))
	case errors.Is(err, models.ErrConflict):
		return c.JSON(http.StatusConflict, models.NewErrorResponse("conflict", "Payment method already exists"))
	default:
		c.Logger().Error("payments handler: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "%s", fallback))
	}
}
