package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-api/services"
)

type AuthHandler struct {
	responder
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		responder:   newResponder(logger),
		authService: authService,
	}
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Position "Admin" (any case) grants the Admin role, anything else the User role.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 409 {object} middleware.ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusCreated, user, nil)
}

// Login godoc
// @Summary Вход по логину и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} services.TokenPair
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 401 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tokens, err := h.authService.Login(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, tokens, nil)
}

// ManageAdmin godoc
// @Summary Выдать или отозвать роль администратора
// @Tags auth
// @Accept json
// @Produce json
// @Param body body services.ManageAdminInput true "Role change"
// @Success 200 {object} models.User
// @Failure 400 {object} middleware.ProblemDetails
// @Failure 401 {object} middleware.ProblemDetails
// @Failure 403 {object} middleware.ProblemDetails
// @Failure 404 {object} middleware.ProblemDetails
// @Security BearerAuth
// @Router /auth/manageAdmin [put]
func (h *AuthHandler) ManageAdmin(w http.ResponseWriter, r *http.Request) {
	var input services.ManageAdminInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	user, err := h.authService.ManageAdmin(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, user, nil)
}

// Refresh godoc
// @Summary Обменять просроченный access token и refresh token на новую пару
// @Tags token
// @Accept json
// @Produce json
// @Param body body services.TokenPair true "Current token pair"
// @Success 200 {object} services.TokenPair
// @Failure 400 {object} middleware.ProblemDetails
// @Router /token/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input services.TokenPair
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tokens, err := h.authService.Refresh(r.Context(), input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.ok(w, r, http.StatusOK, tokens, nil)
}
