// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"github.com/grigorevv/docvault/internal/domain"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// DomainError отображает доменную ошибку в HTTP-статус и тело ответа.
// Неизвестные ошибки скрываются за 500, чтобы не раскрывать детали хранилища.
func DomainError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, Error("authentication required")
	case errors.Is(err, domain.ErrUserNotActive):
		return http.StatusForbidden, Error("account awaiting approval")
	case errors.Is(err, domain.ErrUserDisabled):
		return http.StatusForbidden, Error("account disabled")
	case errors.Is(err, domain.ErrApprovalRequired):
		return http.StatusForbidden, Error("approval required")
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, Error("forbidden")
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, Error("document not found")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Error("not found")
	case errors.Is(err, domain.ErrDuplicateRequest):
		return http.StatusConflict, Error("pending request already exists")
	case errors.Is(err, domain.ErrAlreadyAuthorized):
		return http.StatusConflict, Error("download already authorized")
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, Error("request is not pending")
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, Error("username or email already taken")
	default:
		return http.StatusInternalServerError, Error("internal service error")
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s has unsupported value", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too short", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}
