package http

import (
	"context"
	"net/http"

	"github.com/frontandrew/plakatakip/internal/delivery/http/middleware"
	"github.com/frontandrew/plakatakip/internal/domain"
	"github.com/frontandrew/plakatakip/internal/pkg/logger"
	"github.com/frontandrew/plakatakip/internal/usecase/auth"
)

// AuthService - то, что нужно handler'у от сервиса аутентификации
type AuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	Me(ctx context.Context, username string) (*domain.User, error)
}

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	authService AuthService
	logger      logger.Logger
}

// NewAuthHandler создает новый handler
func NewAuthHandler(authService AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login обрабатывает вход пользователя
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, "Failed to login user", err)
		return
	}

	respondSuccess(w, http.StatusOK, response)
}

// Me возвращает информацию о текущем пользователе
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	// Получаем пользователя из контекста (добавлен middleware)
	claims, ok := middleware.GetUserClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.authService.Me(r.Context(), claims.Username)
	if err != nil {
		respondServiceError(w, h.logger, "Failed to get user", err)
		return
	}

	respondSuccess(w, http.StatusOK, user)
}
