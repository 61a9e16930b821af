// Package download реализует HTTP-обработчик выдачи содержимого документа.
//
// Решение о выдаче принимается по свежему снимку документа и заявки:
// закрытый просмотр даёт 404, открытый просмотр без действующего
// разрешения — 403. Успешный ответ отдает байты с Content-Disposition.
package download

import (
	"context"
	"fmt"
	"io"
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

// Handler обрабатывает запросы скачивания документа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики документов
}

// Service описывает интерфейс бизнес-логики скачивания.
type Service interface {
	Download(ctx context.Context, user *models.User, id string) (io.ReadCloser, *models.Document, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Скачать документ
// @Description Выдает содержимое документа при действующем разрешении на скачивание.
// @Tags Documents
// @Produce  application/octet-stream
// @Param id path string true "ID документа"
// @Success 200 {file} binary "Содержимое документа"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет действующего разрешения"
// @Failure 404 {object} response.ErrorResponse "Документ не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /documents/{id}/download [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.download"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	user := middlewarectx.UserFromContext(r.Context())

	rc, doc, err := h.service.Download(r.Context(), user, id)
	if err != nil {
		log.Error("failed to download document", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	defer func() {
		_ = rc.Close()
	}()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", doc.Name))
	if _, err := io.Copy(w, rc); err != nil {
		log.Error("failed to stream document", sl.Err(err))
		return
	}
	log.Info("document downloaded", slog.String("id", id))
}
