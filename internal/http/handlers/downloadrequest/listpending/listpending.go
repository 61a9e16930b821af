// Package listpending реализует HTTP-обработчик обзора pending-заявок.
//
// Администратор видит все pending-заявки, владелец — только заявки
// на собственные документы.
package listpending

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

// Handler обрабатывает запросы обзора pending-заявок.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики заявок
}

// Service описывает интерфейс бизнес-логики обзора заявок.
type Service interface {
	ListPendingFor(ctx context.Context, actor *models.User) ([]*models.DownloadRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Заявки, ожидающие решения
// @Description Возвращает pending-заявки: администратору — все, владельцу — на его документы.
// @Tags DownloadRequests
// @Produce  json
// @Success 200 {object} map[string]any "Список pending-заявок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /requests/pending [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.downloadrequest.listpending"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor := middlewarectx.UserFromContext(r.Context())
	requests, err := h.service.ListPendingFor(r.Context(), actor)
	if err != nil {
		log.Error("failed to list pending requests", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	result := make([]models.DownloadRequestDTO, 0, len(requests))
	for _, req := range requests {
		result = append(result, req.ToDTO())
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"requests": result,
	}))
}
