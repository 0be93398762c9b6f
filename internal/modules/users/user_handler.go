package users

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"user-profile-service/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service  ServiceInterface
	validate *validator.Validate // for request body validation
}

// NewHandler creates a new user handler.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	createdUser, err := h.service.Signup(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return c.JSON(http.StatusConflict, models.NewErrorResponse("conflict", "Email address is already in use"))
		}
		c.Logger().Error("Handler.Signup: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to create user"))
	}

	return c.JSON(http.StatusCreated, createdUser)
}

func (h *Handler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	authResponse, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("invalid_credentials", "Invalid email or password"))
		}
		c.Logger().Error("Handler.Login: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to log in"))
	}

	return c.JSON(http.StatusOK, authResponse)
}

// GoogleLogin initiates the Google OAuth 2.0 login flow by redirecting
// the user to Google's consent screen.
func (h *Handler) GoogleLogin(c echo.Context) error {
	authURL, state, err := h.service.HandleGoogleLogin()
	if err != nil {
		c.Logger().Error("Handler.GoogleLogin: failed to generate auth URL: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Could not initiate Google login"))
	}

	// Store the state parameter in a short-lived secure cookie.
	cookie := new(http.Cookie)
	cookie.Name = "oauthstate"
	cookie.Value = state
	cookie.Expires = time.Now().Add(10 * time.Minute)
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Secure = true
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)

	return c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GoogleCallback handles the redirect from Google, validating the state
// parameter against the cookie set in GoogleLogin.
func (h *Handler) GoogleCallback(c echo.Context) error {
	oauthStateCookie, err := c.Cookie("oauthstate")
	if err != nil {
		c.Logger().Error("Handler.GoogleCallback: could not read state cookie: ", err)
		return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Invalid or missing state cookie"))
	}

	if c.QueryParam("state") != oauthStateCookie.Value {
		c.Logger().Error("Handler.GoogleCallback: state parameter mismatch")
		return c.JSON(http.StatusUnauthorized, models.NewErrorResponse("unauthorized", "Invalid state parameter"))
	}

	// The state cookie is single-use.
	oauthStateCookie.Value = ""
	oauthStateCookie.Expires = time.Unix(0, 0)
	c.SetCookie(oauthStateCookie)

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Authorization code not provided"))
	}

	authResponse, err := h.service.HandleGoogleCallback(c.Request().Context(), code)
	if err != nil {
		c.Logger().Error("Handler.GoogleCallback: service error: ", err)
		return c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/login/error", h.service.GetClientOrigin()))
	}

	redirectURL := fmt.Sprintf("%s/login/success?token=%s", h.service.GetClientOrigin(), authResponse.AccessToken)
	return c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

func (h *Handler) ActivateAccount(c echo.Context) error {
	var req models.ActivationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request: missing token"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "%s", err.Error()))
	}

	// After activation, automatically log the user in.
	authResponse, err := h.service.ActivateUserAndLogin(c.Request().Context(), req.Token)
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			return c.JSON(http.StatusBadRequest, models.NewErrorResponse("invalid_token", "Invalid or expired activation token"))
		}
		c.Logger().Error("Handler.ActivateAccount: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to activate account"))
	}

	return c.JSON(http.StatusOK, authResponse)
}

// ResendActivation handles requests to resend an activation email.
func (h *Handler) ResendActivation(c echo.Context) error {
	var req models.ResendActivationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	if err := h.service.ResendActivationEmail(c.Request().Context(), req.Email); err != nil {
		// Log but don't expose, to prevent email enumeration.
		c.Logger().Error("Handler.ResendActivation encountered a service error: ", err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If an account with that email address exists and is not yet activated, a new activation link has been sent.",
	})
}

// RequestPasswordReset is step one of the two-step password reset flow.
func (h *Handler) RequestPasswordReset(c echo.Context) error {
	var req models.RequestPasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	if err := h.service.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		c.Logger().Error("Handler.RequestPasswordReset encountered a service error: ", err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If an account with that email address exists, a link to reset your password has been sent.",
	})
}

// ResetPassword is step two: it receives the token and the new password,
// and on success logs the user in with a fresh JWT.
func (h *Handler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	authResponse, err := h.service.ResetPassword(c.Request().Context(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, models.ErrInvalidToken) {
			return c.JSON(http.StatusBadRequest, models.NewErrorResponse("invalid_token", "Invalid or expired password reset token"))
		}
		c.Logger().Error("Handler.ResetPassword: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "An internal error occurred while resetting the password"))
	}

	return c.JSON(http.StatusOK, authResponse)
}

// --- Profile routes ---

func (h *Handler) GetProfile(c echo.Context) error {
	userID := c.Get("userID").(string)

	user, err := h.service.GetUserProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "User profile not found"))
		}
		c.Logger().Error("Handler.GetProfile: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to retrieve profile"))
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	userID := c.Get("userID").(string)

	var req models.UserUpdateData
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("bad_request", "Invalid request body"))
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.NewErrorResponse("validation_failed", "Validation failed: %s", err.Error()))
	}

	user, err := h.service.UpdateUserProfile(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "User profile not found"))
		case errors.Is(err, models.ErrNicknameTaken):
			return c.JSON(http.StatusConflict, models.NewErrorResponse("conflict", "Nickname is already taken"))
		}
		c.Logger().Error("Handler.UpdateProfile: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to update profile"))
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteAccount removes the authenticated user's account and everything
// it owns.
func (h *Handler) DeleteAccount(c echo.Context) error {
	userID := c.Get("userID").(string)

	if err := h.service.DeleteAccount(c.Request().Context(), userID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, models.NewErrorResponse("not_found", "User profile not found"))
		}
		c.Logger().Error("Handler.DeleteAccount: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to delete account"))
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Admin routes ---

// AdminListUsers returns a page of registered users.
func (h *Handler) AdminListUsers(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, total, err := h.service.AdminListUsers(c.Request().Context(), page, limit)
	if err != nil {
		c.Logger().Error("Handler.AdminListUsers: ", err)
		return c.JSON(http.StatusInternalServerError, models.NewErrorResponse("internal_error", "Failed to list users"))
	}
	if result == nil {
		result = []models.User{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"users": result,
		"total": total,
	})
}
