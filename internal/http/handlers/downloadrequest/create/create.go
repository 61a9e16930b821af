// Package create реализует HTTP-обработчик подачи заявки на скачивание.
//
// Заявка принимается только на видимый документ без действующего разрешения;
// повторная pending-заявка по той же паре отклоняется.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/grigorevv/docvault/internal/http/middlewarectx"
	"github.com/grigorevv/docvault/internal/http/response"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
)

// Handler обрабатывает запросы подачи заявок на скачивание.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики заявок
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики подачи заявки.
type Service interface {
	Create(ctx context.Context, user *models.User, documentID string, form models.DummyDownloadRequest) (*models.DownloadRequest, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подать заявку на скачивание
// @Description Создает pending-заявку на доступ к байтам документа. По паре (документ, заявитель) допускается не более одной pending-заявки.
// @Tags DownloadRequests
// @Accept  json
// @Produce  json
// @Param id path string true "ID документа"
// @Param request body models.DummyDownloadRequest true "Данные заявителя"
// @Success 200 {object} map[string]any "Заявка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 409 {object} response.ErrorResponse "Заявка не нужна или уже подана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /documents/{id}/requests [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.downloadrequest.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	documentID := chi.URLParam(r, "id")

	var req models.DummyDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user := middlewarectx.UserFromContext(r.Context())
	created, err := h.service.Create(r.Context(), user, documentID, req)
	if err != nil {
		log.Error("failed to create download request", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("download request created", slog.String("request_id_value", created.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"request": created.ToDTO(),
	}))
}
