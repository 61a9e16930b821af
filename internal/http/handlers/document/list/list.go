// Package list реализует HTTP-обработчик списка документов.
//
// Возвращаются только документы, видимые текущему пользователю.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grigorevv/docvault/internal/http/middlewarectx"
	"github.com/grigorevv/docvault/internal/http/response"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
)

// Handler обрабатывает запросы списка документов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики документов
}

// Service описывает интерфейс бизнес-логики списка документов.
type Service interface {
	List(ctx context.Context, user *models.User) ([]models.DocumentDTO, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список документов
// @Description Возвращает документы, видимые текущему пользователю.
// @Tags Documents
// @Produce  json
// @Success 200 {object} map[string]any "Список документов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /documents [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	docs, err := h.service.List(r.Context(), user)
	if err != nil {
		log.Error("failed to list documents", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"documents": docs,
	}))
}
