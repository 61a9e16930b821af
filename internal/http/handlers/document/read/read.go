// Package read реализует HTTP-обработчик для получения документа по ID.
//
// Невидимый пользователю документ неотличим от несуществующего: оба
// случая дают 404.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grigorevv/docvault/internal/http/middlewarectx"
	"github.com/grigorevv/docvault/internal/http/response"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
)

// Handler обрабатывает запросы на получение документа по идентификатору.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики документов
}

// Service описывает интерфейс бизнес-логики чтения документа.
type Service interface {
	Read(ctx context.Context, user *models.User, id string) (*models.Document, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить документ
// @Description Возвращает метаданные документа, если он видим текущему пользователю.
// @Tags Documents
// @Produce  json
// @Param id path string true "ID документа"
// @Success 200 {object} map[string]any "Метаданные документа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /documents/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	user := middlewarectx.UserFromContext(r.Context())

	doc, err := h.service.Read(r.Context(), user, id)
	if err != nil {
		log.Error("failed to read document", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"document": doc.ToDTO(),
	}))
}
