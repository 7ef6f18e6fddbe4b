package controllers

import (
	"log/slog"
	"net/http"

	"boothsale/internal/delivery/http/helpers"
	"boothsale/internal/domain"
)

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
	EventID  string `json:"event_id"`
}

// Validate implements Validator.
func (l LoginRequest) Validate() []string {
	var errs []string
	if l.Role == "" {
		errs = append(errs, "role is required")
	}
	if l.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

// LoginResponse is the success body for POST /auth/login.
type LoginResponse struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	EventID string `json:"event_id,omitempty"`
}

type AuthController struct {
	Logger  *slog.Logger
	Service domain.AuthService
}

func NewAuthController(logger *slog.Logger, svc domain.AuthService) *AuthController {
	return &AuthController{
		Logger:  logger,
		Service: svc,
	}
}

// Login godoc
// @Summary Console login
// @Description Exchanges a role password for a bearer token. Vendors may pass event_id to use the event-specific password; the token is then scoped to that event.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} helpers.APIResponse "data contains the token"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	token, err := c.Service.Login(r.Context(), req.Role, req.Password, req.EventID)
	if err != nil {
		if helpers.IsInternal(err) {
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		}
		helpers.WriteDomainError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, LoginResponse{Token: token, Role: req.Role, EventID: req.EventID})
}
