// Package domain определяет типизированные ошибки ядра авторизации.
//
// Ошибки изолируют бизнес-уровень от ошибок хранилища и транспорта:
// репозитории и сервисы возвращают только эти значения, а HTTP-слой
// отображает их в статус-коды (401/403/404/409).
package domain

import "errors"

var (
	// ErrUnauthenticated — запрос без валидных учётных данных.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden — пользователь аутентифицирован, но политика запрещает действие.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound — ресурс отсутствует либо невидим для пользователя.
	// Невидимые документы намеренно неотличимы от несуществующих.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRequest — по паре (документ, заявитель) уже есть pending-заявка.
	ErrDuplicateRequest = errors.New("pending request already exists")

	// ErrAlreadyAuthorized — заявка не нужна: доступ к байтам уже разрешён.
	ErrAlreadyAuthorized = errors.New("download already authorized")

	// ErrApprovalRequired — документ видим, но скачивание требует
	// одобренной заявки. Отдельная ошибка, чтобы клиент мог предложить
	// подачу заявки вместо общего отказа.
	ErrApprovalRequired = errors.New("approval required")

	// ErrInvalidTransition — попытка перевести заявку из терминального статуса.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDocumentNotFound — документ заявки удалён.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAlreadyExists — нарушение уникальности username или email при регистрации.
	ErrAlreadyExists = errors.New("already exists")

	// ErrUserNotActive — учётная запись ещё не одобрена администратором.
	ErrUserNotActive = errors.New("account awaiting approval")

	// ErrUserDisabled — учётная запись отключена администратором.
	ErrUserDisabled = errors.New("account disabled")
)
