// Package me реализует HTTP-обработчик, возвращающий идентичность
// текущего пользователя по его JWT.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grigorevv/docvault/internal/http/middlewarectx"
	"github.com/grigorevv/docvault/internal/http/response"
)

// Handler обрабатывает запросы идентичности текущего пользователя.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает UID, имя и роль пользователя из проверенного JWT.
// @Tags Auth
// @Produce  json
// @Success 200 {object} map[string]any "Идентичность пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	if user == nil {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("authentication required"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":      user.UID,
		"username": user.Username,
		"role":     user.Role,
	}))
}
