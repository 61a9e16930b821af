// Package reject реализует HTTP-обработчик отклонения заявки на скачивание.
package reject

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

// Handler обрабатывает запросы отклонения заявок.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики заявок
}

// Service описывает интерфейс бизнес-логики отклонения.
type Service interface {
	Reject(ctx context.Context, actor *models.User, requestID string) (*models.DownloadRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отклонить заявку
// @Description Переводит pending-заявку в rejected. Доступно владельцу документа и администратору.
// @Tags DownloadRequests
// @Produce  json
// @Param id path string true "ID заявки"
// @Success 200 {object} map[string]any "Заявка отклонена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Заявка или документ не найдены"
// @Failure 409 {object} response.ErrorResponse "Заявка уже в терминальном статусе"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /requests/{id}/reject [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.downloadrequest.reject"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	requestID := chi.URLParam(r, "id")
	actor := middlewarectx.UserFromContext(r.Context())

	rejected, err := h.service.Reject(r.Context(), actor, requestID)
	if err != nil {
		log.Error("failed to reject request", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("request rejected", slog.String("request_id_value", requestID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": rejected.ToDTO(),
	}))
}
