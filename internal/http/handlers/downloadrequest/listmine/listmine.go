// Package listmine реализует HTTP-обработчик списка заявок текущего пользователя.
package listmine

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

// Handler обрабатывает запросы списка собственных заявок.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики заявок
}

// Service описывает интерфейс бизнес-логики списка заявок пользователя.
type Service interface {
	ListMine(ctx context.Context, user *models.User) ([]*models.DownloadRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Мои заявки
// @Description Возвращает все заявки текущего пользователя, новые первыми.
// @Tags DownloadRequests
// @Produce  json
// @Success 200 {object} map[string]any "Список заявок"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /requests/mine [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.downloadrequest.listmine"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user := middlewarectx.UserFromContext(r.Context())
	requests, err := h.service.ListMine(r.Context(), user)
	if err != nil {
		log.Error("failed to list own requests", sl.Err(err))
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
