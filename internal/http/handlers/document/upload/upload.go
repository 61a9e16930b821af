// Package upload реализует HTTP-обработчик загрузки документов.
//
// Handler принимает multipart/form-data с файлом и полями дескриптора прав,
// сохраняет содержимое и регистрирует документ за текущим пользователем.
package upload

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/grigorevv/docvault/internal/http/middlewarectx"
	"github.com/grigorevv/docvault/internal/http/response"
	"github.com/grigorevv/docvault/internal/lib/sl"
	"github.com/grigorevv/docvault/internal/models"
)

// Предел размера multipart-формы, удерживаемой в памяти.
const maxMemory = 32 << 20

// Handler обрабатывает запросы загрузки документов.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики документов
}

// Service описывает интерфейс бизнес-логики загрузки.
type Service interface {
	Upload(ctx context.Context, user *models.User,
		filename, mimeType, notes, permission string, allowedUsers []string,
		preauthorized bool, src io.Reader) (*models.Document, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Загрузить документ
// @Description Принимает файл и дескриптор прав, регистрирует документ за текущим пользователем.
// @Tags Documents
// @Accept  multipart/form-data
// @Produce  json
// @Param file formData file true "Файл документа"
// @Param notes formData string false "Заметки владельца"
// @Param permission formData string false "Режим доступа: public, private, specific"
// @Param allowed_users formData string false "JSON-массив UID для permission=specific"
// @Param download_preauthorized formData bool false "Скачивание без заявки"
// @Success 200 {object} map[string]any "Документ создан"
// @Failure 400 {object} response.ErrorResponse "Некорректная форма"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /documents [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		log.Error("file field missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("file field is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	permission := r.FormValue("permission")
	if permission != "" && !models.ValidPermission(permission) {
		log.Error("unsupported permission", slog.String("permission", permission))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("field permission has unsupported value"))
		return
	}

	var allowedUsers []string
	if raw := r.FormValue("allowed_users"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &allowedUsers); err != nil {
			log.Error("failed to decode allowed_users", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid allowed_users"))
			return
		}
	}
	preauthorized := r.FormValue("download_preauthorized") == "true"

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	user := middlewarectx.UserFromContext(r.Context())
	doc, err := h.service.Upload(r.Context(), user,
		header.Filename, mimeType, r.FormValue("notes"), permission,
		allowedUsers, preauthorized, file)
	if err != nil {
		log.Error("failed to upload document", sl.Err(err))
		status, resp := response.DomainError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("document uploaded", slog.String("id", doc.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"document": doc.ToDTO(),
	}))
}
